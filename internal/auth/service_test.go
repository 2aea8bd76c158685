package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hearthwise/hearth-core/internal/infrastructure/database"
	_ "github.com/hearthwise/hearth-core/migrations"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return NewService(NewUserRepository(db.DB), NewTokenRepository(db.DB), testSecret, 15, 60)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "Alice", "a long enough password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Register() did not assign an ID")
	}
	if user.PasswordHash == "a long enough password" {
		t.Error("password stored in plaintext")
	}

	pair, err := svc.Login(ctx, "alice", "a long enough password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Login() returned an incomplete token pair")
	}

	userID, err := svc.Authenticate(pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if userID != user.ID {
		t.Errorf("Authenticate() = %q, want %q", userID, user.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bad name!", "", "a long enough password"); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("Register(bad username) = %v, want ErrInvalidUsername", err)
	}
	if _, err := svc.Register(ctx, "bob", "", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Register(weak password) = %v, want ErrWeakPassword", err)
	}

	if _, err := svc.Register(ctx, "carol", "", "a long enough password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "carol", "", "a long enough password"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Register(duplicate) = %v, want ErrUsernameTaken", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "", "a long enough password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong password entirely"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "mallory", "a long enough password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown user) = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "", "a long enough password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	pair, err := svc.Login(ctx, "alice", "a long enough password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("Refresh() did not rotate the refresh token")
	}

	// The old token is spent.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Refresh(spent token) = %v, want ErrTokenRevoked", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "", "a long enough password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	pair, err := svc.Login(ctx, "alice", "a long enough password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	// Idempotent.
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Errorf("Logout(again) = %v, want nil", err)
	}

	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Refresh(after logout) = %v, want ErrTokenRevoked", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Refresh(context.Background(), "no-such-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Refresh(unknown) = %v, want ErrTokenInvalid", err)
	}
}
