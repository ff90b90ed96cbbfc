package models

import (
	"time"

	"github.com/google/uuid"
)

// Application statuses
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// IsDecision reports whether s is a status a brand may set on a pending application.
func IsDecision(s string) bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

type Application struct {
	ID              uuid.UUID `json:"id"`
	CampaignID      uuid.UUID `json:"campaign_id"`
	InfluencerID    uuid.UUID `json:"influencer_id"`
	BrandID         uuid.UUID `json:"brand_id"`
	Status          string    `json:"status"`
	Message         string    `json:"message"`
	ProposedContent string    `json:"proposed_content"`
	// Snapshot taken at submission.
	InfluencerName  string `json:"influencer_name"`
	InfluencerEmail string `json:"influencer_email"`
	InfluencerNiche string `json:"influencer_niche"`
	CampaignTitle   string `json:"campaign_title"`
	CreatedAt       int64  `json:"created_at"`
	UpdatedAt       int64  `json:"updated_at"`
}

// EpochMillis converts t to the millisecond timestamps stored on applications.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

type ApplicationStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

// Add counts n applications with the given status.
// Unknown statuses are ignored so the per-status counts always sum to Total.
func (s *ApplicationStats) Add(status string, n int) {
	switch status {
	case ApplicationStatusApproved:
		s.Approved += n
	case ApplicationStatusPending:
		s.Pending += n
	case ApplicationStatusRejected:
		s.Rejected += n
	default:
		return
	}
	s.Total += n
}

// StatusCount is one row of a per-campaign GROUP BY status query.
// Status is empty for campaigns without applications.
type StatusCount struct {
	CampaignID uuid.UUID
	Status     string
	Count      int
}

// TallyStats folds status counts into per-campaign stats.
// Every campaign that appears in rows gets an entry, even with zero applications.
func TallyStats(rows []StatusCount) map[uuid.UUID]ApplicationStats {
	out := make(map[uuid.UUID]ApplicationStats, len(rows))
	for _, r := range rows {
		s := out[r.CampaignID]
		s.Add(r.Status, r.Count)
		out[r.CampaignID] = s
	}
	return out
}
