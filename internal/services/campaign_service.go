package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/events"
	"github.com/amplyst/backend/internal/models"
	"github.com/amplyst/backend/internal/rbac"
	"github.com/amplyst/backend/internal/repositories"
	"github.com/amplyst/backend/internal/textutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxTitleLen = 200
	maxTextLen  = 5000
)

// CampaignInput carries the editable campaign fields for create and update.
type CampaignInput struct {
	Title          string
	Description    string
	Budget         *decimal.Decimal
	Status         string
	TargetAudience *string
	ContentTypes   []string
	StartDate      *string
	EndDate        *string
	Duration       *string
	Requirements   *string
}

// apply validates the input and copies it onto c. Status is left to the caller.
func (in CampaignInput) apply(c *models.Campaign) error {
	title := textutil.PlainText(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("%w: title is longer than %d characters", models.ErrInvalidInput, maxTitleLen)
	}
	description := textutil.PlainText(in.Description)
	if description == "" {
		return fmt.Errorf("%w: description is required", models.ErrInvalidInput)
	}
	if in.Budget != nil && in.Budget.IsNegative() {
		return fmt.Errorf("%w: budget must not be negative", models.ErrInvalidInput)
	}
	contentTypes, err := normalizeContentTypes(in.ContentTypes)
	if err != nil {
		return err
	}

	c.Title = title
	c.Description = textutil.Truncate(description, maxTextLen)
	c.Budget = in.Budget
	c.ContentTypes = contentTypes
	c.TargetAudience = plainOrNil(in.TargetAudience)
	c.Requirements = plainOrNil(in.Requirements)
	c.Duration = plainOrNil(in.Duration)
	c.StartDate = trimOrNil(in.StartDate)
	c.EndDate = trimOrNil(in.EndDate)
	return c.ValidateDates()
}

func normalizeContentTypes(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		if !models.IsValidContentType(t) {
			return nil, fmt.Errorf("%w: unknown content type %q", models.ErrInvalidInput, t)
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func plainOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := textutil.Truncate(textutil.PlainText(*s), maxTextLen)
	if v == "" {
		return nil
	}
	return &v
}

type CampaignService struct {
	campaigns CampaignStore
	audit     AuditStore
	publisher events.Publisher
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewCampaignService(
	campaigns CampaignStore,
	audit AuditStore,
	publisher events.Publisher,
	retention time.Duration,
	log *zap.Logger,
) *CampaignService {
	if retention <= 0 {
		retention = models.ExpiredRetention
	}
	return &CampaignService{
		campaigns: campaigns,
		audit:     audit,
		publisher: publisher,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

func (s *CampaignService) Create(ctx context.Context, caller auth.Identity, in CampaignInput) (*models.Campaign, error) {
	if err := rbac.Authorize(caller, rbac.PermCreateCampaign); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.CampaignStatusDraft
	}
	if status != models.CampaignStatusDraft && status != models.CampaignStatusActive {
		return nil, fmt.Errorf("%w: a new campaign must be draft or active", models.ErrInvalidInput)
	}

	c := &models.Campaign{UserID: caller.UserID, Status: status}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, &caller.UserID, "campaign_created", models.EntityCampaign, c.ID,
		map[string]any{"status": status})

	return c, nil
}

// Get returns the campaign, or nil when it does not exist or the caller may not see it.
// Owners see every status; everyone else only sees active campaigns.
func (s *CampaignService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Campaign, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	c, err := s.campaigns.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.UserID != caller.UserID && c.Status != models.CampaignStatusActive {
		return nil, nil
	}
	return c, nil
}

func (s *CampaignService) ListMine(ctx context.Context, caller auth.Identity, includeExpired bool) ([]models.Campaign, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	return s.campaigns.ListByUser(ctx, caller.UserID, includeExpired)
}

func (s *CampaignService) Browse(ctx context.Context, caller auth.Identity, f repositories.CampaignFilter) ([]models.Campaign, error) {
	if err := rbac.Authorize(caller, rbac.PermBrowseCampaigns); err != nil {
		return nil, err
	}
	if f.ContentType != nil {
		t := strings.ToLower(strings.TrimSpace(*f.ContentType))
		if t == "" {
			f.ContentType = nil
		} else {
			f.ContentType = &t
		}
	}
	return s.campaigns.Browse(ctx, f)
}

// owned loads a campaign the caller may manage.
func (s *CampaignService) owned(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Campaign, error) {
	if err := rbac.Authorize(caller, rbac.PermManageCampaign); err != nil {
		return nil, err
	}
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", id, err)
	}
	if c.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: campaign belongs to another user", models.ErrForbidden)
	}
	return c, nil
}

// checkTransition validates a user-requested status change of c to status.
// c carries the end date that will apply after the change.
func (s *CampaignService) checkTransition(c *models.Campaign, from, to string) error {
	if to == models.CampaignStatusExpired {
		return fmt.Errorf("%w: campaigns expire automatically", models.ErrInvalidInput)
	}
	if !models.IsValidCampaignTransition(from, to) {
		return fmt.Errorf("%w: cannot move campaign from %s to %s", models.ErrInvalidInput, from, to)
	}
	if to == models.CampaignStatusActive && c.HasEnded(s.now()) {
		return fmt.Errorf("%w: end date has passed, move it before activating", models.ErrInvalidInput)
	}
	return nil
}

func (s *CampaignService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in CampaignInput) (*models.Campaign, error) {
	existing, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.CampaignStatusExpired {
		return nil, fmt.Errorf("%w: expired campaigns cannot be edited", models.ErrConflict)
	}

	updated := *existing
	if err := in.apply(&updated); err != nil {
		return nil, err
	}
	from := existing.Status
	if in.Status != "" && in.Status != from {
		if err := s.checkTransition(&updated, from, in.Status); err != nil {
			return nil, err
		}
		updated.Status = in.Status
	}

	if err := s.campaigns.Update(ctx, &updated, from); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, &caller.UserID, "campaign_updated", models.EntityCampaign, id, nil)
	if updated.Status != from {
		s.statusChanged(ctx, &caller.UserID, &updated, from)
	}

	return &updated, nil
}

// UpdateStatus applies a user-requested status change. Requesting the current
// status is a no-op.
func (s *CampaignService) UpdateStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, status string) (*models.Campaign, error) {
	c, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !models.IsValidCampaignStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, status)
	}
	if status == c.Status {
		return c, nil
	}
	if err := s.checkTransition(c, c.Status, status); err != nil {
		return nil, err
	}

	from := c.Status
	ok, err := s.campaigns.UpdateStatus(ctx, id, from, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: campaign status changed concurrently", models.ErrConflict)
	}
	c.Status = status

	s.statusChanged(ctx, &caller.UserID, c, from)
	return c, nil
}

func (s *CampaignService) statusChanged(ctx context.Context, actor *uuid.UUID, c *models.Campaign, from string) {
	recordAudit(ctx, s.audit, s.log, actor, models.StatusChangeAction(from, c.Status), models.EntityCampaign, c.ID,
		map[string]any{"old_status": from, "new_status": c.Status})

	_ = s.publisher.Publish(ctx, events.Stream, events.Event{
		Type: events.EventCampaignStatusChanged,
		Payload: map[string]any{
			"campaign_id": c.ID.String(),
			"old_status":  from,
			"new_status":  c.Status,
		},
		Recipients: []uuid.UUID{c.UserID},
	})
}

// Delete removes the campaign together with its applications.
func (s *CampaignService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	c, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	deleted, err := s.campaigns.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("campaign %s: %w", id, models.ErrNotFound)
	}

	recordAudit(ctx, s.audit, s.log, &caller.UserID, "campaign_deleted", models.EntityCampaign, id,
		map[string]any{"status": c.Status, "title": c.Title})
	_ = s.publisher.Publish(ctx, events.Stream, events.Event{
		Type:       events.EventCampaignDeleted,
		Payload:    map[string]any{"campaign_id": id.String()},
		Recipients: []uuid.UUID{c.UserID},
	})
	return nil
}

// Events returns the audit trail of a campaign, newest first.
func (s *CampaignService) Events(ctx context.Context, caller auth.Identity, id uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.audit.GetByEntity(ctx, models.EntityCampaign, id, limit, offset)
}

// CheckExpired moves every active campaign whose end date has passed to expired
// and returns how many it moved. Running it again without newly ended campaigns
// returns 0 and changes nothing.
func (s *CampaignService) CheckExpired(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.campaigns.ListEndedActive(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list ended campaigns: %w", err)
	}

	expired := 0
	for i := range candidates {
		c := &candidates[i]
		if !c.ShouldExpire(now) {
			continue
		}
		ok, err := s.campaigns.MarkExpired(ctx, c.ID, now)
		if err != nil {
			return expired, fmt.Errorf("expire campaign %s: %w", c.ID, err)
		}
		if !ok {
			continue
		}
		expired++

		recordAudit(ctx, s.audit, s.log, nil, "campaign_expired", models.EntityCampaign, c.ID,
			map[string]any{"end_date": *c.EndDate})
		_ = s.publisher.Publish(ctx, events.Stream, events.Event{
			Type: events.EventCampaignExpired,
			Payload: map[string]any{
				"campaign_id": c.ID.String(),
				"title":       c.Title,
				"expired_at":  now.UTC().Format(time.RFC3339),
			},
			Recipients: []uuid.UUID{c.UserID},
		})
	}

	if expired > 0 {
		s.log.Info("campaigns expired", zap.Int("count", expired))
	}
	return expired, nil
}

// DeleteExpired deletes campaigns that have been expired for longer than the
// retention period and returns how many it deleted.
func (s *CampaignService) DeleteExpired(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.retention)
	candidates, err := s.campaigns.ListExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list expired campaigns: %w", err)
	}

	deleted := 0
	for i := range candidates {
		c := &candidates[i]
		if !c.CleanupDue(now, s.retention) {
			continue
		}
		ok, err := s.campaigns.DeleteExpired(ctx, c.ID, cutoff)
		if err != nil {
			return deleted, fmt.Errorf("delete expired campaign %s: %w", c.ID, err)
		}
		if !ok {
			continue
		}
		deleted++

		recordAudit(ctx, s.audit, s.log, nil, "campaign_deleted", models.EntityCampaign, c.ID,
			map[string]any{"reason": "expired", "title": c.Title})
	}

	if deleted > 0 {
		s.log.Info("expired campaigns deleted", zap.Int("count", deleted))
	}
	return deleted, nil
}
