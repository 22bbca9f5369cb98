package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// Service handles account signup and login. Passwords are stored as bcrypt
// hashes, never in clear.
type Service struct {
	users  Users
	cost   int
	logger *zap.Logger
}

// New creates an auth service using the default bcrypt cost.
func New(users Users, logger *zap.Logger) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost, logger: logger}
}

// Signup registers a new account. Returns domain.ErrEmailTaken when the
// email is already registered.
func (s *Service) Signup(ctx context.Context, name, email, password string) error {
	// Check before hashing; Create still maps the unique violation for the
	// race where two signups pass this check concurrently.
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, &u); err != nil {
		return err
	}

	s.logger.Info("user signed up", zap.String("email", email))
	return nil
}

// Login verifies credentials. Returns domain.ErrIncorrectEmail for unknown
// emails and domain.ErrIncorrectPassword on a hash mismatch.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrIncorrectEmail
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return domain.User{}, domain.ErrIncorrectPassword
	}

	s.logger.Info("user logged in", zap.String("email", email))
	return u, nil
}
