package repositories

import (
	"context"

	"github.com/amplyst/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

// Listings read display fields live and fall back to the submission snapshot
// when the source no longer has a value.
const applicationEnrichedSelect = `
	SELECT a.id, a.campaign_id, a.influencer_id, a.brand_id, a.status, a.message, a.proposed_content,
	       COALESCE(NULLIF(u.name, ''), a.influencer_name),
	       COALESCE(NULLIF(u.email, ''), a.influencer_email),
	       COALESCE(NULLIF(ip.niche, ''), a.influencer_niche),
	       COALESCE(NULLIF(c.title, ''), a.campaign_title),
	       a.created_at, a.updated_at
	FROM applications a
	LEFT JOIN campaigns c ON c.id = a.campaign_id
	LEFT JOIN users u ON u.id = a.influencer_id
	LEFT JOIN influencer_profiles ip ON ip.user_id = a.influencer_id`

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.CampaignID, &a.InfluencerID, &a.BrandID, &a.Status, &a.Message,
		&a.ProposedContent, &a.InfluencerName, &a.InfluencerEmail, &a.InfluencerNiche,
		&a.CampaignTitle, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepo) list(ctx context.Context, where string, arg any) ([]models.Application, error) {
	rows, err := r.pool.Query(ctx, applicationEnrichedSelect+` WHERE `+where+` ORDER BY a.created_at DESC`, arg)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepo) Create(ctx context.Context, a *models.Application) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO applications (campaign_id, influencer_id, brand_id, status, message, proposed_content,
		                          influencer_name, influencer_email, influencer_niche, campaign_title,
		                          created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, a.CampaignID, a.InfluencerID, a.BrandID, a.Status, a.Message, a.ProposedContent,
		a.InfluencerName, a.InfluencerEmail, a.InfluencerNiche, a.CampaignTitle,
		a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	return translate(err)
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx, applicationEnrichedSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// Decide sets the final status of a pending application.
// It reports false when the application was already decided.
func (r *ApplicationRepo) Decide(ctx context.Context, id uuid.UUID, status string, updatedAt int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE applications SET status = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'
	`, status, updatedAt, id)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ApplicationRepo) ListByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Application, error) {
	return r.list(ctx, `a.brand_id = $1`, brandID)
}

func (r *ApplicationRepo) ListByInfluencer(ctx context.Context, influencerID uuid.UUID) ([]models.Application, error) {
	return r.list(ctx, `a.influencer_id = $1`, influencerID)
}

func (r *ApplicationRepo) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Application, error) {
	return r.list(ctx, `a.campaign_id = $1`, campaignID)
}

// StatusCountsByOwner groups applications by campaign and status for every campaign
// owned by userID. Campaigns without applications yield one row with an empty status.
func (r *ApplicationRepo) StatusCountsByOwner(ctx context.Context, userID uuid.UUID) ([]models.StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, COALESCE(a.status, ''), COUNT(a.id)
		FROM campaigns c
		LEFT JOIN applications a ON a.campaign_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id, a.status
	`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.CampaignID, &sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}
