package dto

import "github.com/shopspring/decimal"

type CampaignRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	Status         string           `json:"status,omitempty"`
	TargetAudience *string          `json:"target_audience,omitempty"`
	ContentTypes   []string         `json:"content_types,omitempty"`
	StartDate      *string          `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate        *string          `json:"end_date,omitempty"`   // YYYY-MM-DD
	Duration       *string          `json:"duration,omitempty"`
	Requirements   *string          `json:"requirements,omitempty"`
}

type UpdateCampaignStatusRequest struct {
	Status string `json:"status"`
}

type CreateApplicationRequest struct {
	CampaignID      string `json:"campaign_id"`
	Message         string `json:"message"`
	ProposedContent string `json:"proposed_content"`
}

type DecideApplicationRequest struct {
	Status string `json:"status"` // approved / rejected
}

type InfluencerProfileRequest struct {
	Niche          string           `json:"niche"`
	FollowerCount  int64            `json:"follower_count"`
	EngagementRate *decimal.Decimal `json:"engagement_rate,omitempty"`
	Platforms      []string         `json:"platforms,omitempty"`
	Bio            *string          `json:"bio,omitempty"`
}

type BrandProfileRequest struct {
	CompanyName string  `json:"company_name"`
	Industry    *string `json:"industry,omitempty"`
	BudgetRange *string `json:"budget_range,omitempty"`
	Website     *string `json:"website,omitempty"`
}
