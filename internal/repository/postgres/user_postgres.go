package postgres

import (
	"context"
	"database/sql"

	"github.com/PYTHTRADER/findtrader/internal/model"
	"github.com/PYTHTRADER/findtrader/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, email, role, created_at FROM users WHERE id = $1`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertRole inserts the user or, if it exists, replaces its role and non-empty email.
func (r *UserPostgres) UpsertRole(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET role = EXCLUDED.role,
		    email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email)
		RETURNING id, email, role, created_at
	`
	var out model.User
	if err := r.db.QueryRowContext(ctx, q, u.ID, u.Email, u.Role, u.CreatedAt).
		Scan(&out.ID, &out.Email, &out.Role, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}
