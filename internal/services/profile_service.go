package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/models"
	"github.com/amplyst/backend/internal/textutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type InfluencerProfileInput struct {
	Niche          string
	FollowerCount  int64
	EngagementRate *decimal.Decimal
	Platforms      []string
	Bio            *string
}

func (in InfluencerProfileInput) apply(p *models.InfluencerProfile) error {
	niche := textutil.PlainText(in.Niche)
	if niche == "" {
		return fmt.Errorf("%w: niche is required", models.ErrInvalidInput)
	}
	if in.FollowerCount < 0 {
		return fmt.Errorf("%w: follower count must not be negative", models.ErrInvalidInput)
	}
	if r := in.EngagementRate; r != nil && (r.IsNegative() || r.GreaterThan(decimal.NewFromInt(100))) {
		return fmt.Errorf("%w: engagement rate must be between 0 and 100", models.ErrInvalidInput)
	}
	platforms := make([]string, 0, len(in.Platforms))
	seen := map[string]bool{}
	for _, pl := range in.Platforms {
		pl = strings.ToLower(strings.TrimSpace(pl))
		if pl == "" || seen[pl] {
			continue
		}
		if !models.IsValidPlatform(pl) {
			return fmt.Errorf("%w: unknown platform %q", models.ErrInvalidInput, pl)
		}
		seen[pl] = true
		platforms = append(platforms, pl)
	}

	p.Niche = niche
	p.FollowerCount = in.FollowerCount
	p.EngagementRate = in.EngagementRate
	p.Platforms = platforms
	p.Bio = plainOrNil(in.Bio)
	return nil
}

type BrandProfileInput struct {
	CompanyName string
	Industry    *string
	BudgetRange *string
	Website     *string
}

func (in BrandProfileInput) apply(p *models.BrandProfile) error {
	name := textutil.PlainText(in.CompanyName)
	if name == "" {
		return fmt.Errorf("%w: company name is required", models.ErrInvalidInput)
	}
	website := trimOrNil(in.Website)
	if website != nil {
		u, err := url.Parse(*website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: website must be an http(s) URL", models.ErrInvalidInput)
		}
	}

	p.CompanyName = name
	p.Industry = plainOrNil(in.Industry)
	p.BudgetRange = plainOrNil(in.BudgetRange)
	p.Website = website
	return nil
}

type ProfileService struct {
	users    UserStore
	profiles ProfileStore
	audit    AuditStore
	log      *zap.Logger
}

func NewProfileService(users UserStore, profiles ProfileStore, audit AuditStore, log *zap.Logger) *ProfileService {
	return &ProfileService{
		users:    users,
		profiles: profiles,
		audit:    audit,
		log:      log,
	}
}

// ResolveIdentity maps verified token claims to the local user, creating it on first sight.
func (s *ProfileService) ResolveIdentity(ctx context.Context, claims *auth.Claims) (auth.Identity, error) {
	u, err := s.users.UpsertBySubject(ctx, claims.Subject, claims.Email, claims.Name)
	if err != nil {
		return auth.Identity{}, err
	}
	id := auth.Identity{
		UserID:  u.ID,
		Subject: u.ExternalSubject,
		Email:   u.Email,
		Name:    u.Name,
	}
	if u.Role != nil {
		id.Role = *u.Role
	}
	return id, nil
}

// Me returns the caller's user record with the profile of its role, if any.
func (s *ProfileService) Me(ctx context.Context, caller auth.Identity) (*models.Profile, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	out := &models.Profile{User: u}
	switch {
	case u.HasRole(models.RoleInfluencer):
		if out.Influencer, err = s.profiles.GetInfluencerByUserID(ctx, u.ID); err != nil {
			return nil, err
		}
	case u.HasRole(models.RoleBrand):
		if out.Brand, err = s.profiles.GetBrandByUserID(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func onboardingCheck(caller auth.Identity) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if caller.Role != "" {
		return fmt.Errorf("%w: already onboarded as %s", models.ErrConflict, caller.Role)
	}
	return nil
}

// CreateInfluencerProfile onboards the caller as an influencer.
func (s *ProfileService) CreateInfluencerProfile(ctx context.Context, caller auth.Identity, in InfluencerProfileInput) (*models.InfluencerProfile, error) {
	if err := onboardingCheck(caller); err != nil {
		return nil, err
	}
	p := &models.InfluencerProfile{UserID: caller.UserID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.profiles.CreateInfluencer(ctx, p); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, &caller.UserID, "influencer_onboarded", models.EntityUser, caller.UserID, nil)
	return p, nil
}

// CreateBrandProfile onboards the caller as a brand.
func (s *ProfileService) CreateBrandProfile(ctx context.Context, caller auth.Identity, in BrandProfileInput) (*models.BrandProfile, error) {
	if err := onboardingCheck(caller); err != nil {
		return nil, err
	}
	p := &models.BrandProfile{UserID: caller.UserID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.profiles.CreateBrand(ctx, p); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, &caller.UserID, "brand_onboarded", models.EntityUser, caller.UserID, nil)
	return p, nil
}

func (s *ProfileService) UpdateInfluencerProfile(ctx context.Context, caller auth.Identity, in InfluencerProfileInput) (*models.InfluencerProfile, error) {
	if err := requireRole(caller, models.RoleInfluencer); err != nil {
		return nil, err
	}
	p := &models.InfluencerProfile{UserID: caller.UserID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateInfluencer(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) UpdateBrandProfile(ctx context.Context, caller auth.Identity, in BrandProfileInput) (*models.BrandProfile, error) {
	if err := requireRole(caller, models.RoleBrand); err != nil {
		return nil, err
	}
	p := &models.BrandProfile{UserID: caller.UserID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateBrand(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func requireRole(caller auth.Identity, role string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if caller.Role != role {
		return fmt.Errorf("%w: %s profile required", models.ErrForbidden, role)
	}
	return nil
}
