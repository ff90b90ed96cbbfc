package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amplyst/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNothingDeleted = errors.New("nothing deleted")

type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

const campaignColumns = `
	id, user_id, title, description, budget, status,
	to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
	duration, content_types, target_audience, requirements, expired_at,
	created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Budget, &c.Status,
		&c.StartDate, &c.EndDate, &c.Duration, &c.ContentTypes, &c.TargetAudience,
		&c.Requirements, &c.ExpiredAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCampaigns(rows pgx.Rows) ([]models.Campaign, error) {
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	if c.ContentTypes == nil {
		c.ContentTypes = []string{}
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (user_id, title, description, budget, status, start_date, end_date,
		                       duration, content_types, target_audience, requirements)
		VALUES ($1, $2, $3, $4, $5, $6::text::date, $7::text::date, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, c.UserID, c.Title, c.Description, c.Budget, c.Status, c.StartDate, c.EndDate,
		c.Duration, c.ContentTypes, c.TargetAudience, c.Requirements,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// Update writes the editable fields and the status in one statement, provided the
// campaign is still in status from. Status validation is the caller's job.
func (r *CampaignRepo) Update(ctx context.Context, c *models.Campaign, from string) error {
	if c.ContentTypes == nil {
		c.ContentTypes = []string{}
	}
	err := r.pool.QueryRow(ctx, `
		UPDATE campaigns SET title = $1, description = $2, budget = $3, status = $4,
		       start_date = $5::text::date, end_date = $6::text::date, duration = $7,
		       content_types = $8, target_audience = $9, requirements = $10, updated_at = now()
		WHERE id = $11 AND status = $12 AND status <> 'expired'
		RETURNING created_at, updated_at
	`, c.Title, c.Description, c.Budget, c.Status, c.StartDate, c.EndDate, c.Duration,
		c.ContentTypes, c.TargetAudience, c.Requirements, c.ID, from,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: campaign changed concurrently", models.ErrConflict)
	}
	return translate(err)
}

// UpdateStatus moves a campaign from one status to another.
// It reports false when the campaign is no longer in the expected status.
func (r *CampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkExpired flips an active campaign to expired, stamping expired_at.
// It reports false when the campaign was not active anymore.
func (r *CampaignRepo) MarkExpired(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns SET status = 'expired', expired_at = $1, updated_at = now()
		WHERE id = $2 AND status = 'active'
	`, at, id)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes the campaign and its applications in one transaction.
func (r *CampaignRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.deleteWhere(ctx, id, `DELETE FROM campaigns WHERE id = $1`)
}

// DeleteExpired removes a campaign only if it is still expired since before cutoff.
func (r *CampaignRepo) DeleteExpired(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	return r.deleteWhere(ctx, id, `
		DELETE FROM campaigns WHERE id = $1 AND status = 'expired' AND expired_at < $2
	`, cutoff)
}

func (r *CampaignRepo) deleteWhere(ctx context.Context, id uuid.UUID, query string, extra ...any) (bool, error) {
	var deleted bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Lock the row first so a concurrent application insert cannot slip in between.
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM campaigns WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE campaign_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, query, append([]any{id}, extra...)...)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() == 1
		if !deleted {
			return errNothingDeleted
		}
		return nil
	})
	if errors.Is(err, errNothingDeleted) || errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translate(err)
	}
	return deleted, nil
}

// ListByUser returns all campaigns of the owner, newest first.
func (r *CampaignRepo) ListByUser(ctx context.Context, userID uuid.UUID, includeExpired bool) ([]models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id = $1`
	if !includeExpired {
		query += ` AND status <> 'expired'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, translate(err)
	}
	return collectCampaigns(rows)
}

// ListEndedActive returns active campaigns whose end date is before now.
func (r *CampaignRepo) ListEndedActive(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+` FROM campaigns
		WHERE status = 'active' AND end_date IS NOT NULL
		  AND (end_date::timestamp AT TIME ZONE 'UTC') < $1
		ORDER BY end_date
	`, now)
	if err != nil {
		return nil, translate(err)
	}
	return collectCampaigns(rows)
}

// ListExpiredBefore returns expired campaigns whose expired_at is before cutoff.
func (r *CampaignRepo) ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+` FROM campaigns
		WHERE status = 'expired' AND expired_at < $1
		ORDER BY expired_at
	`, cutoff)
	if err != nil {
		return nil, translate(err)
	}
	return collectCampaigns(rows)
}

type CampaignFilter struct {
	ContentType *string
	Search      *string
	Limit       int
	Offset      int
}

// Browse lists active campaigns for discovery.
func (r *CampaignRepo) Browse(ctx context.Context, f CampaignFilter) ([]models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	argIdx := 1
	where := []string{}

	where = append(where, fmt.Sprintf("status = $%d", argIdx))
	args = append(args, models.CampaignStatusActive)
	argIdx++

	if f.ContentType != nil {
		where = append(where, fmt.Sprintf("$%d = ANY(content_types)", argIdx))
		args = append(args, *f.ContentType)
		argIdx++
	}
	if f.Search != nil && *f.Search != "" {
		where = append(where, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR COALESCE(target_audience, '') ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+*f.Search+"%")
		argIdx++
	}

	query += " WHERE " + strings.Join(where, " AND ")

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	return collectCampaigns(rows)
}
