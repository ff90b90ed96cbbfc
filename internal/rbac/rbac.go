package rbac

import (
	"fmt"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/models"
)

// Permission constants
const (
	PermCreateCampaign    = "create_campaign"
	PermManageCampaign    = "manage_campaign"
	PermBrowseCampaigns   = "browse_campaigns"
	PermSubmitApplication = "submit_application"
	PermReviewApplication = "review_application"
	PermViewBrandStats    = "view_brand_stats"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	models.RoleBrand: {
		PermCreateCampaign, PermManageCampaign, PermReviewApplication, PermViewBrandStats,
	},
	models.RoleInfluencer: {
		PermBrowseCampaigns, PermSubmitApplication,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// Authorize checks that the caller is authenticated and its role grants permission.
func Authorize(caller auth.Identity, permission string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if !HasPermission(caller.Role, permission) {
		if caller.Role == "" {
			return fmt.Errorf("%w: complete onboarding first", models.ErrForbidden)
		}
		return fmt.Errorf("%w: role %s cannot %s", models.ErrForbidden, caller.Role, permission)
	}
	return nil
}
