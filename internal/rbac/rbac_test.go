package rbac

import (
	"errors"
	"testing"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/models"
	"github.com/google/uuid"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		expected   bool
	}{
		{models.RoleBrand, PermCreateCampaign, true},
		{models.RoleBrand, PermManageCampaign, true},
		{models.RoleBrand, PermReviewApplication, true},
		{models.RoleBrand, PermViewBrandStats, true},
		{models.RoleBrand, PermSubmitApplication, false},

		{models.RoleInfluencer, PermSubmitApplication, true},
		{models.RoleInfluencer, PermBrowseCampaigns, true},
		{models.RoleInfluencer, PermCreateCampaign, false},
		{models.RoleInfluencer, PermReviewApplication, false},

		{"", PermBrowseCampaigns, false},
		{"admin", PermCreateCampaign, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.permission); got != tt.expected {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.permission, got, tt.expected)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		caller  auth.Identity
		perm    string
		wantErr error
	}{
		{"anonymous", auth.Identity{}, PermCreateCampaign, models.ErrUnauthenticated},
		{"not onboarded", auth.Identity{UserID: uuid.New()}, PermCreateCampaign, models.ErrForbidden},
		{"wrong role", auth.Identity{UserID: uuid.New(), Role: models.RoleInfluencer}, PermReviewApplication, models.ErrForbidden},
		{"allowed", auth.Identity{UserID: uuid.New(), Role: models.RoleBrand}, PermReviewApplication, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.perm)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authorize() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
