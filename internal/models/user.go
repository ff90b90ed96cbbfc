package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User roles. A user has no role until onboarding creates a profile.
const (
	RoleInfluencer = "influencer"
	RoleBrand      = "brand"
)

type User struct {
	ID              uuid.UUID `json:"id"`
	ExternalSubject string    `json:"-"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            *string   `json:"role,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastActiveAt    time.Time `json:"last_active_at"`
}

func (u *User) HasRole(role string) bool {
	return u.Role != nil && *u.Role == role
}

type InfluencerProfile struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	Niche          string           `json:"niche"`
	FollowerCount  int64            `json:"follower_count"`
	EngagementRate *decimal.Decimal `json:"engagement_rate,omitempty"`
	Platforms      []string         `json:"platforms"`
	Bio            *string          `json:"bio,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type BrandProfile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyName string    `json:"company_name"`
	Industry    *string   `json:"industry,omitempty"`
	BudgetRange *string   `json:"budget_range,omitempty"`
	Website     *string   `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Profile is the role-specific view returned by the profile endpoints.
// Exactly one of Influencer or Brand is set once onboarding is done.
type Profile struct {
	User       *User              `json:"user"`
	Influencer *InfluencerProfile `json:"influencer,omitempty"`
	Brand      *BrandProfile      `json:"brand,omitempty"`
}

var SocialPlatforms = []string{"instagram", "tiktok", "youtube", "twitter", "twitch", "linkedin", "facebook"}

func IsValidPlatform(p string) bool {
	for _, sp := range SocialPlatforms {
		if sp == p {
			return true
		}
	}
	return false
}
