package repositories

import (
	"context"

	"github.com/amplyst/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UpsertBySubject returns the user for an identity provider subject, creating it on first sight.
// Non-empty email and name from the token refresh the stored values.
func (r *UserRepo) UpsertBySubject(ctx context.Context, subject, email, name string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (external_subject, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_subject) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			last_active_at = now()
		RETURNING id, external_subject, email, name, role, created_at, last_active_at
	`, subject, email, name).Scan(
		&u.ID, &u.ExternalSubject, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.LastActiveAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, external_subject, email, name, role, created_at, last_active_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.ExternalSubject, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
