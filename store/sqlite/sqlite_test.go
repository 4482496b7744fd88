package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	securelogin "github.com/gourab-0/secure-login-system"
	"github.com/gourab-0/secure-login-system/password"
	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.db")
	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createAlice(t *testing.T, s *Store) securelogin.UserRecord {
	t.Helper()

	record, err := s.CreateUser(context.Background(), securelogin.CreateUserInput{
		Username:   "alice",
		Credential: password.Credential{Digest: "d1", Salt: "s1"},
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return record
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	created := createAlice(t, s)

	got, err := s.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.UserID != created.UserID {
		t.Fatalf("UserID = %s, want %s", got.UserID, created.UserID)
	}
	if got.Credential.Digest != "d1" || got.Credential.Salt != "s1" {
		t.Fatalf("credential = %+v", got.Credential)
	}
	if got.TwoFactorEnabled || got.TwoFactorSecret != nil {
		t.Fatalf("fresh account has 2FA state: %+v", got)
	}
	if got.TwoFactorCounter != -1 {
		t.Fatalf("counter = %d, want -1", got.TwoFactorCounter)
	}
}

func TestUnknownUser(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetUserByUsername(context.Background(), "nobody"); !errors.Is(err, securelogin.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := s.UpdateTwoFactorCounter(context.Background(), "nobody", 1); !errors.Is(err, securelogin.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := s.SetTwoFactor(context.Background(), "nobody", true, []byte("0123456789")); !errors.Is(err, securelogin.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	createAlice(t, s)

	_, err := s.CreateUser(context.Background(), securelogin.CreateUserInput{
		Username:   "alice",
		Credential: password.Credential{Digest: "other"},
	})
	if !errors.Is(err, securelogin.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestTwoFactorSecretStoredBase32(t *testing.T) {
	s := newTestStore(t)
	createAlice(t, s)
	ctx := context.Background()

	secret := []byte("0123456789abcdefghij")
	if err := s.SetTwoFactor(ctx, "alice", true, secret); err != nil {
		t.Fatalf("SetTwoFactor failed: %v", err)
	}

	// The column holds base32 text, and reads decode it back to raw bytes.
	var encoded string
	row := s.db.QueryRow(`SELECT two_factor_secret FROM users WHERE username = 'alice'`)
	if err := row.Scan(&encoded); err != nil {
		t.Fatalf("scan secret column: %v", err)
	}
	if encoded != securelogin.EncodeSecret(secret) {
		t.Fatalf("column = %q, want %q", encoded, securelogin.EncodeSecret(secret))
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if string(got.TwoFactorSecret) != string(secret) {
		t.Fatalf("decoded secret = %q, want %q", got.TwoFactorSecret, secret)
	}
}

func TestDisableClearsSecretAndCounter(t *testing.T) {
	s := newTestStore(t)
	createAlice(t, s)
	ctx := context.Background()

	if err := s.SetTwoFactor(ctx, "alice", true, []byte("0123456789")); err != nil {
		t.Fatalf("SetTwoFactor failed: %v", err)
	}
	if err := s.UpdateTwoFactorCounter(ctx, "alice", 99); err != nil {
		t.Fatalf("UpdateTwoFactorCounter failed: %v", err)
	}
	if err := s.SetTwoFactor(ctx, "alice", false, nil); err != nil {
		t.Fatalf("SetTwoFactor failed: %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.TwoFactorEnabled || got.TwoFactorSecret != nil {
		t.Fatalf("2FA state survived disable: %+v", got)
	}
	if got.TwoFactorCounter != -1 {
		t.Fatalf("counter = %d, want -1", got.TwoFactorCounter)
	}
}

func TestUpdateCredential(t *testing.T) {
	s := newTestStore(t)
	createAlice(t, s)
	ctx := context.Background()

	next := password.Credential{Digest: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA", Salt: ""}
	if err := s.UpdateCredential(ctx, "alice", next); err != nil {
		t.Fatalf("UpdateCredential failed: %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.Credential != next {
		t.Fatalf("credential = %+v, want %+v", got.Credential, next)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		if _, err := s.CreateUser(ctx, securelogin.CreateUserInput{
			Username:   name,
			Credential: password.Credential{Digest: "d"},
		}); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", name, err)
		}
	}
	if err := s.SetTwoFactor(ctx, "bob", true, []byte("0123456789")); err != nil {
		t.Fatalf("SetTwoFactor failed: %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	for i, want := range []string{"alice", "bob", "carol"} {
		if users[i].Username != want {
			t.Fatalf("users[%d] = %s, want %s", i, users[i].Username, want)
		}
	}
	if !users[1].TwoFactorEnabled || users[0].TwoFactorEnabled {
		t.Fatalf("unexpected 2FA flags: %+v", users)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	first, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := first.CreateUser(context.Background(), securelogin.CreateUserInput{
		Username:   "alice",
		Credential: password.Credential{Digest: "d1", Salt: "s1"},
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	got, err := second.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername after reopen failed: %v", err)
	}
	if got.Credential.Digest != "d1" {
		t.Fatalf("credential lost across reopen: %+v", got.Credential)
	}
}
