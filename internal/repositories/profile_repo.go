package repositories

import (
	"context"
	"fmt"

	"github.com/amplyst/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// claimRole sets the user's role if it has none yet.
func claimRole(ctx context.Context, tx pgx.Tx, userID uuid.UUID, role string) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2 AND role IS NULL`, role, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user already onboarded", models.ErrConflict)
	}
	return nil
}

// CreateInfluencer stores the profile and assigns the influencer role atomically.
func (r *ProfileRepo) CreateInfluencer(ctx context.Context, p *models.InfluencerProfile) error {
	if p.Platforms == nil {
		p.Platforms = []string{}
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := claimRole(ctx, tx, p.UserID, models.RoleInfluencer); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO influencer_profiles (user_id, niche, follower_count, engagement_rate, platforms, bio)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`, p.UserID, p.Niche, p.FollowerCount, p.EngagementRate, p.Platforms, p.Bio,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})
	return translate(err)
}

// CreateBrand stores the profile and assigns the brand role atomically.
func (r *ProfileRepo) CreateBrand(ctx context.Context, p *models.BrandProfile) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := claimRole(ctx, tx, p.UserID, models.RoleBrand); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO brand_profiles (user_id, company_name, industry, budget_range, website)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, p.UserID, p.CompanyName, p.Industry, p.BudgetRange, p.Website,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})
	return translate(err)
}

func (r *ProfileRepo) GetInfluencerByUserID(ctx context.Context, userID uuid.UUID) (*models.InfluencerProfile, error) {
	var p models.InfluencerProfile
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, niche, follower_count, engagement_rate, platforms, bio, created_at, updated_at
		FROM influencer_profiles WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.Niche, &p.FollowerCount, &p.EngagementRate,
		&p.Platforms, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProfileRepo) GetBrandByUserID(ctx context.Context, userID uuid.UUID) (*models.BrandProfile, error) {
	var p models.BrandProfile
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, company_name, industry, budget_range, website, created_at, updated_at
		FROM brand_profiles WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.CompanyName, &p.Industry, &p.BudgetRange, &p.Website,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProfileRepo) UpdateInfluencer(ctx context.Context, p *models.InfluencerProfile) error {
	if p.Platforms == nil {
		p.Platforms = []string{}
	}
	err := r.pool.QueryRow(ctx, `
		UPDATE influencer_profiles SET niche = $1, follower_count = $2, engagement_rate = $3,
		       platforms = $4, bio = $5, updated_at = now()
		WHERE user_id = $6
		RETURNING id, created_at, updated_at
	`, p.Niche, p.FollowerCount, p.EngagementRate, p.Platforms, p.Bio, p.UserID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *ProfileRepo) UpdateBrand(ctx context.Context, p *models.BrandProfile) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE brand_profiles SET company_name = $1, industry = $2, budget_range = $3,
		       website = $4, updated_at = now()
		WHERE user_id = $5
		RETURNING id, created_at, updated_at
	`, p.CompanyName, p.Industry, p.BudgetRange, p.Website, p.UserID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}
