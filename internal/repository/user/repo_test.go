package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clarusedu/studybuddy/internal/domain"
)

func TestCreate_HappyPath(t *testing.T) {
	repo, mq := newTestRepo(t)
	ctx := context.Background()

	var gotSQL string
	var gotArgs []any
	mq.execFn = func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		gotSQL = sql
		gotArgs = args
		return pgconn.CommandTag{}, nil
	}

	u := domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: []byte("hash")}
	if err := repo.Create(ctx, &u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotSQL, "INSERT INTO users") {
		t.Errorf("unexpected SQL: %s", gotSQL)
	}
	if len(gotArgs) != 3 || gotArgs[1] != "ada@example.com" {
		t.Errorf("unexpected args: %v", gotArgs)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mq := newTestRepo(t)
	ctx := context.Background()

	mq.execFn = func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
	}

	u := domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: []byte("hash")}
	err := repo.Create(ctx, &u)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreate_OtherError(t *testing.T) {
	repo, mq := newTestRepo(t)
	ctx := context.Background()

	mq.execFn = func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("connection reset")
	}

	u := domain.User{Email: "ada@example.com"}
	err := repo.Create(ctx, &u)
	if err == nil || errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func TestGetByEmail_HappyPath(t *testing.T) {
	repo, mq := newTestRepo(t)
	ctx := context.Background()

	mq.queryRowFn = func(_ context.Context, _ string, args ...any) pgx.Row {
		if args[0] != "ada@example.com" {
			t.Errorf("unexpected email arg: %v", args[0])
		}
		return &mockRow{values: []any{"Ada", "ada@example.com", []byte("hash")}}
	}

	u, err := repo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "Ada" || u.Email != "ada@example.com" || string(u.PasswordHash) != "hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mq := newTestRepo(t)
	ctx := context.Background()

	mq.queryRowFn = func(_ context.Context, _ string, _ ...any) pgx.Row {
		return &mockRow{err: pgx.ErrNoRows}
	}

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExistsByEmail(t *testing.T) {
	repo, mq := newTestRepo(t)
	ctx := context.Background()

	mq.queryRowFn = func(_ context.Context, _ string, _ ...any) pgx.Row {
		return &mockRow{values: []any{true}}
	}

	exists, err := repo.ExistsByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
}

func TestEnsureSchema_Error(t *testing.T) {
	repo, mq := newTestRepo(t)
	ctx := context.Background()

	mq.execFn = func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("permission denied")
	}

	if err := repo.EnsureSchema(ctx); err == nil {
		t.Fatal("expected error to propagate")
	}
}
