package auth

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clarusedu/studybuddy/internal/domain"
)

type mockUsers struct {
	createFn        func(ctx context.Context, u *domain.User) error
	getByEmailFn    func(ctx context.Context, email string) (domain.User, error)
	existsByEmailFn func(ctx context.Context, email string) (bool, error)
}

func (m *mockUsers) Create(ctx context.Context, u *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *mockUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func newTestService(t *testing.T) (*Service, *mockUsers) {
	t.Helper()
	mu := &mockUsers{}
	svc := New(mu, zap.NewNop())
	svc.cost = bcrypt.MinCost // keep hashing fast in tests
	return svc, mu
}

func TestSignup_HappyPath(t *testing.T) {
	svc, mu := newTestService(t)
	ctx := context.Background()

	var created *domain.User
	mu.createFn = func(_ context.Context, u *domain.User) error {
		created = u
		return nil
	}

	if err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if created.Name != "Ada" || created.Email != "ada@example.com" {
		t.Errorf("created user = %+v", created)
	}
	if string(created.PasswordHash) == "hunter2" {
		t.Error("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword(created.PasswordHash, []byte("hunter2")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, mu := newTestService(t)
	ctx := context.Background()

	mu.existsByEmailFn = func(_ context.Context, email string) (bool, error) {
		if email != "ada@example.com" {
			t.Errorf("unexpected email: %s", email)
		}
		return true, nil
	}
	mu.createFn = func(_ context.Context, _ *domain.User) error {
		t.Fatal("Create must not be called when the email is taken")
		return nil
	}

	err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignup_DuplicateEmailRace(t *testing.T) {
	svc, mu := newTestService(t)
	ctx := context.Background()

	// Existence check passes but a concurrent signup wins the insert.
	mu.createFn = func(_ context.Context, _ *domain.User) error {
		return domain.ErrEmailTaken
	}

	err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignup_ExistsCheckError(t *testing.T) {
	svc, mu := newTestService(t)
	ctx := context.Background()

	mu.existsByEmailFn = func(_ context.Context, _ string) (bool, error) {
		return false, errors.New("connection reset")
	}
	mu.createFn = func(_ context.Context, _ *domain.User) error {
		t.Fatal("Create must not be called when the existence check fails")
		return nil
	}

	err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2")
	if err == nil || errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func TestLogin_HappyPath(t *testing.T) {
	svc, mu := newTestService(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	mu.getByEmailFn = func(_ context.Context, email string) (domain.User, error) {
		if email != "ada@example.com" {
			t.Errorf("unexpected email: %s", email)
		}
		return domain.User{Name: "Ada", Email: email, PasswordHash: hash}, nil
	}

	u, err := svc.Login(ctx, "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "Ada" {
		t.Errorf("user = %+v", u)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, mu := newTestService(t)
	ctx := context.Background()

	mu.getByEmailFn = func(_ context.Context, _ string) (domain.User, error) {
		return domain.User{}, domain.ErrNotFound
	}

	_, err := svc.Login(ctx, "nobody@example.com", "hunter2")
	if !errors.Is(err, domain.ErrIncorrectEmail) {
		t.Fatalf("expected ErrIncorrectEmail, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mu := newTestService(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	mu.getByEmailFn = func(_ context.Context, email string) (domain.User, error) {
		return domain.User{Email: email, PasswordHash: hash}, nil
	}

	_, err := svc.Login(ctx, "ada@example.com", "wrong")
	if !errors.Is(err, domain.ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
}

func TestLogin_StoreError(t *testing.T) {
	svc, mu := newTestService(t)
	ctx := context.Background()

	mu.getByEmailFn = func(_ context.Context, _ string) (domain.User, error) {
		return domain.User{}, errors.New("connection reset")
	}

	_, err := svc.Login(ctx, "ada@example.com", "hunter2")
	if err == nil || errors.Is(err, domain.ErrIncorrectEmail) {
		t.Fatalf("expected plain error, got %v", err)
	}
}
