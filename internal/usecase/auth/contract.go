package auth

import (
	"context"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// Users defines the storage contract for accounts.
type Users interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
