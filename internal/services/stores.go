package services

import (
	"context"
	"time"

	"github.com/amplyst/backend/internal/models"
	"github.com/amplyst/backend/internal/repositories"
	"github.com/google/uuid"
)

// The stores below are the subsets of the repositories each service needs.
// *repositories.XRepo satisfies them; tests use in-memory fakes.

type CampaignStore interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign, from string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
	MarkExpired(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteExpired(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, includeExpired bool) ([]models.Campaign, error)
	ListEndedActive(ctx context.Context, now time.Time) ([]models.Campaign, error)
	ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Campaign, error)
	Browse(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	Decide(ctx context.Context, id uuid.UUID, status string, updatedAt int64) (bool, error)
	ListByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Application, error)
	ListByInfluencer(ctx context.Context, influencerID uuid.UUID) ([]models.Application, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Application, error)
	StatusCountsByOwner(ctx context.Context, userID uuid.UUID) ([]models.StatusCount, error)
}

type ProfileStore interface {
	CreateInfluencer(ctx context.Context, p *models.InfluencerProfile) error
	CreateBrand(ctx context.Context, p *models.BrandProfile) error
	GetInfluencerByUserID(ctx context.Context, userID uuid.UUID) (*models.InfluencerProfile, error)
	GetBrandByUserID(ctx context.Context, userID uuid.UUID) (*models.BrandProfile, error)
	UpdateInfluencer(ctx context.Context, p *models.InfluencerProfile) error
	UpdateBrand(ctx context.Context, p *models.BrandProfile) error
}

type UserStore interface {
	UpsertBySubject(ctx context.Context, subject, email, name string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

var (
	_ CampaignStore    = (*repositories.CampaignRepo)(nil)
	_ ApplicationStore = (*repositories.ApplicationRepo)(nil)
	_ ProfileStore     = (*repositories.ProfileRepo)(nil)
	_ UserStore        = (*repositories.UserRepo)(nil)
	_ AuditStore       = (*repositories.AuditRepo)(nil)
)
