package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sohag00879/tech-haven-server/internal/domain/user"
)

const getUserSummarySQL = `SELECT id, user_name, email FROM users WHERE id = $1`

var _ user.Repository = (*UserRepository)(nil)

// UserRepository provides user summary lookups backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetSummary returns the display projection of a single user.
func (r *UserRepository) GetSummary(ctx context.Context, id string) (*user.Summary, error) {
	var u user.Summary
	err := r.pool.QueryRow(ctx, getUserSummarySQL, id).Scan(&u.ID, &u.UserName, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}
