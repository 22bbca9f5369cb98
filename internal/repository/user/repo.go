package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// querier is the consumer interface over a pgx pool (ISP).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT      NOT NULL,
	email         TEXT      NOT NULL UNIQUE,
	password_hash BYTEA     NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// Repo persists user accounts in Postgres.
type Repo struct {
	db querier
}

// New creates a user repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// EnsureSchema creates the users table if it does not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Create inserts a new user. Returns domain.ErrEmailTaken when the email
// is already registered.
func (r *Repo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3)`,
		u.Name, u.Email, u.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user %s: %w", u.Email, err)
	}
	return nil
}

// GetByEmail returns the user registered under email, or domain.ErrNotFound.
func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT name, email, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&u.Name, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("select user %s: %w", email, err)
	}
	return u, nil
}

// ExistsByEmail reports whether email is already registered.
func (r *Repo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", email, err)
	}
	return exists, nil
}
