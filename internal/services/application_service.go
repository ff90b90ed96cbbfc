package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/events"
	"github.com/amplyst/backend/internal/models"
	"github.com/amplyst/backend/internal/rbac"
	"github.com/amplyst/backend/internal/textutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApplicationService struct {
	applications ApplicationStore
	campaigns    CampaignStore
	profiles     ProfileStore
	audit        AuditStore
	publisher    events.Publisher
	log          *zap.Logger
	now          func() time.Time
}

func NewApplicationService(
	applications ApplicationStore,
	campaigns CampaignStore,
	profiles ProfileStore,
	audit AuditStore,
	publisher events.Publisher,
	log *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		campaigns:    campaigns,
		profiles:     profiles,
		audit:        audit,
		publisher:    publisher,
		log:          log,
		now:          time.Now,
	}
}

// Submit creates a pending application of the calling influencer to an active campaign.
// Display fields of the influencer and the campaign are copied onto the record.
func (s *ApplicationService) Submit(ctx context.Context, caller auth.Identity, campaignID uuid.UUID, message, proposedContent string) (*models.Application, error) {
	if err := rbac.Authorize(caller, rbac.PermSubmitApplication); err != nil {
		return nil, err
	}

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, err)
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, fmt.Errorf("%w: campaign is not accepting applications", models.ErrConflict)
	}

	brand, err := s.profiles.GetBrandByUserID(ctx, campaign.UserID)
	if err != nil {
		return nil, fmt.Errorf("brand profile of campaign %s: %w", campaignID, err)
	}

	var niche string
	influencer, err := s.profiles.GetInfluencerByUserID(ctx, caller.UserID)
	switch {
	case err == nil:
		niche = influencer.Niche
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	ts := models.EpochMillis(s.now())
	app := &models.Application{
		CampaignID:      campaign.ID,
		InfluencerID:    caller.UserID,
		BrandID:         brand.ID,
		Status:          models.ApplicationStatusPending,
		Message:         textutil.Truncate(textutil.PlainText(message), maxTextLen),
		ProposedContent: textutil.Truncate(textutil.PlainText(proposedContent), maxTextLen),
		InfluencerName:  caller.Name,
		InfluencerEmail: caller.Email,
		InfluencerNiche: niche,
		CampaignTitle:   campaign.Title,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: already applied to this campaign", models.ErrConflict)
		}
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, &caller.UserID, "application_submitted", models.EntityApplication, app.ID,
		map[string]any{"campaign_id": campaign.ID.String()})
	_ = s.publisher.Publish(ctx, events.Stream, events.Event{
		Type: events.EventApplicationSubmitted,
		Payload: map[string]any{
			"application_id":  app.ID.String(),
			"campaign_id":     campaign.ID.String(),
			"campaign_title":  campaign.Title,
			"influencer_name": app.InfluencerName,
		},
		Recipients: []uuid.UUID{campaign.UserID},
	})

	return app, nil
}

// brandOf returns the brand profile of the caller.
func (s *ApplicationService) brandOf(ctx context.Context, caller auth.Identity) (*models.BrandProfile, error) {
	brand, err := s.profiles.GetBrandByUserID(ctx, caller.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: brand profile required", models.ErrForbidden)
	}
	return brand, err
}

// Decide approves or rejects a pending application of one of the caller's campaigns.
// Decided applications are final.
func (s *ApplicationService) Decide(ctx context.Context, caller auth.Identity, id uuid.UUID, status string) (*models.Application, error) {
	if err := rbac.Authorize(caller, rbac.PermReviewApplication); err != nil {
		return nil, err
	}
	if !models.IsDecision(status) {
		return nil, fmt.Errorf("%w: status must be approved or rejected", models.ErrInvalidInput)
	}

	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", id, err)
	}
	brand, err := s.brandOf(ctx, caller)
	if err != nil {
		return nil, err
	}
	if app.BrandID != brand.ID {
		return nil, fmt.Errorf("%w: application belongs to another brand", models.ErrForbidden)
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, fmt.Errorf("%w: application already %s", models.ErrConflict, app.Status)
	}

	ts := models.EpochMillis(s.now())
	ok, err := s.applications.Decide(ctx, id, status, ts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: application was decided concurrently", models.ErrConflict)
	}
	app.Status = status
	app.UpdatedAt = ts

	recordAudit(ctx, s.audit, s.log, &caller.UserID, "application_"+status, models.EntityApplication, app.ID,
		map[string]any{"campaign_id": app.CampaignID.String()})
	_ = s.publisher.Publish(ctx, events.Stream, events.Event{
		Type: events.EventApplicationDecided,
		Payload: map[string]any{
			"application_id": app.ID.String(),
			"campaign_id":    app.CampaignID.String(),
			"campaign_title": app.CampaignTitle,
			"status":         status,
		},
		Recipients: []uuid.UUID{app.InfluencerID},
	})

	return app, nil
}

// ListForBrand returns the applications to all of the caller's campaigns.
func (s *ApplicationService) ListForBrand(ctx context.Context, caller auth.Identity) ([]models.Application, error) {
	if err := rbac.Authorize(caller, rbac.PermReviewApplication); err != nil {
		return nil, err
	}
	brand, err := s.brandOf(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.applications.ListByBrand(ctx, brand.ID)
}

func (s *ApplicationService) ListForInfluencer(ctx context.Context, caller auth.Identity) ([]models.Application, error) {
	if err := rbac.Authorize(caller, rbac.PermSubmitApplication); err != nil {
		return nil, err
	}
	return s.applications.ListByInfluencer(ctx, caller.UserID)
}

func (s *ApplicationService) ListForCampaign(ctx context.Context, caller auth.Identity, campaignID uuid.UUID) ([]models.Application, error) {
	if err := rbac.Authorize(caller, rbac.PermReviewApplication); err != nil {
		return nil, err
	}
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, err)
	}
	if campaign.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: campaign belongs to another user", models.ErrForbidden)
	}
	return s.applications.ListByCampaign(ctx, campaignID)
}

// StatsByBrand counts applications per status for every campaign of the caller,
// including campaigns without applications. Nothing is cached.
func (s *ApplicationService) StatsByBrand(ctx context.Context, caller auth.Identity) (map[uuid.UUID]models.ApplicationStats, error) {
	if err := rbac.Authorize(caller, rbac.PermViewBrandStats); err != nil {
		return nil, err
	}
	counts, err := s.applications.StatusCountsByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return models.TallyStats(counts), nil
}
