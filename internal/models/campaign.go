package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusArchived  = "archived"
	CampaignStatusExpired   = "expired"
)

// DateLayout is the wire and storage format of campaign start/end dates.
const DateLayout = "2006-01-02"

// ExpiredRetention is how long an expired campaign is kept before cleanup deletes it.
const ExpiredRetention = 7 * 24 * time.Hour

// Valid user-requested transitions: from -> []to.
// Expired is entered only by the expiry sweep and never leaves it.
var ValidCampaignTransitions = map[string][]string{
	CampaignStatusDraft:     {CampaignStatusActive},
	CampaignStatusActive:    {CampaignStatusCompleted, CampaignStatusArchived},
	CampaignStatusCompleted: {CampaignStatusActive},
	CampaignStatusArchived:  {CampaignStatusActive},
	CampaignStatusExpired:   {},
}

func IsValidCampaignTransition(from, to string) bool {
	allowed, ok := ValidCampaignTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsValidCampaignStatus reports whether s is one of the known statuses.
func IsValidCampaignStatus(s string) bool {
	_, ok := ValidCampaignTransitions[s]
	return ok
}

type Campaign struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	Status         string           `json:"status"`
	StartDate      *string          `json:"start_date,omitempty"`
	EndDate        *string          `json:"end_date,omitempty"`
	Duration       *string          `json:"duration,omitempty"`
	ContentTypes   []string         `json:"content_types"`
	TargetAudience *string          `json:"target_audience,omitempty"`
	Requirements   *string          `json:"requirements,omitempty"`
	ExpiredAt      *time.Time       `json:"expired_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ParseDate parses a YYYY-MM-DD campaign date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return t, nil
}

// HasEnded reports whether the end date lies strictly before now.
// Campaigns without an end date never end on their own.
func (c *Campaign) HasEnded(now time.Time) bool {
	if c.EndDate == nil || *c.EndDate == "" {
		return false
	}
	end, err := ParseDate(*c.EndDate)
	if err != nil {
		return false
	}
	return end.Before(now)
}

// ShouldExpire reports whether the expiry sweep must move c to expired.
func (c *Campaign) ShouldExpire(now time.Time) bool {
	return c.Status == CampaignStatusActive && c.HasEnded(now)
}

// CleanupDue reports whether c has been expired for longer than retention.
func (c *Campaign) CleanupDue(now time.Time, retention time.Duration) bool {
	if c.Status != CampaignStatusExpired || c.ExpiredAt == nil {
		return false
	}
	return c.ExpiredAt.Before(now.Add(-retention))
}

// ValidateDates checks date formats and that the end is not before the start.
func (c *Campaign) ValidateDates() error {
	var start, end time.Time
	var err error
	if c.StartDate != nil && *c.StartDate != "" {
		if start, err = ParseDate(*c.StartDate); err != nil {
			return err
		}
	}
	if c.EndDate != nil && *c.EndDate != "" {
		if end, err = ParseDate(*c.EndDate); err != nil {
			return err
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return nil
}

// Predefined content type tags offered by the campaign form.
var ContentTypes = []string{
	"post", "story", "reel", "video", "short", "live", "review", "unboxing", "blog",
}

func IsValidContentType(t string) bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}
