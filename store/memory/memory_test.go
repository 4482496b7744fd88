package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	securelogin "github.com/gourab-0/secure-login-system"
	"github.com/gourab-0/secure-login-system/password"
)

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

func TestCreateAndGet(t *testing.T) {
	s := New()
	created := createAlice(t, s)

	if created.UserID == "" {
		t.Fatal("expected a generated user ID")
	}
	if created.TwoFactorCounter != -1 {
		t.Fatalf("fresh record counter = %d, want -1", created.TwoFactorCounter)
	}

	got, err := s.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.UserID != created.UserID || got.Credential.Digest != "d1" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetUnknownUser(t *testing.T) {
	s := New()
	_, err := s.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, securelogin.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	s := New()
	createAlice(t, s)

	_, err := s.CreateUser(context.Background(), securelogin.CreateUserInput{Username: "alice"})
	if !errors.Is(err, securelogin.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestSetTwoFactorLifecycle(t *testing.T) {
	s := New()
	createAlice(t, s)
	ctx := context.Background()

	secret := []byte("0123456789")
	if err := s.SetTwoFactor(ctx, "alice", true, secret); err != nil {
		t.Fatalf("SetTwoFactor failed: %v", err)
	}
	if err := s.UpdateTwoFactorCounter(ctx, "alice", 42); err != nil {
		t.Fatalf("UpdateTwoFactorCounter failed: %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if !got.TwoFactorEnabled || string(got.TwoFactorSecret) != string(secret) {
		t.Fatalf("unexpected 2FA state: %+v", got)
	}
	if got.TwoFactorCounter != 42 {
		t.Fatalf("counter = %d, want 42", got.TwoFactorCounter)
	}

	// Re-enabling resets the replay counter.
	if err := s.SetTwoFactor(ctx, "alice", true, secret); err != nil {
		t.Fatalf("SetTwoFactor failed: %v", err)
	}
	got, _ = s.GetUserByUsername(ctx, "alice")
	if got.TwoFactorCounter != -1 {
		t.Fatalf("re-enroll counter = %d, want -1", got.TwoFactorCounter)
	}

	// Disabling destroys the secret.
	if err := s.SetTwoFactor(ctx, "alice", false, nil); err != nil {
		t.Fatalf("SetTwoFactor failed: %v", err)
	}
	got, _ = s.GetUserByUsername(ctx, "alice")
	if got.TwoFactorEnabled || len(got.TwoFactorSecret) != 0 {
		t.Fatalf("secret survived disable: %+v", got)
	}
}

func TestReturnedSecretIsACopy(t *testing.T) {
	s := New()
	createAlice(t, s)
	ctx := context.Background()

	if err := s.SetTwoFactor(ctx, "alice", true, []byte("0123456789")); err != nil {
		t.Fatalf("SetTwoFactor failed: %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	for i := range got.TwoFactorSecret {
		got.TwoFactorSecret[i] = 0
	}

	again, _ := s.GetUserByUsername(ctx, "alice")
	if string(again.TwoFactorSecret) != "0123456789" {
		t.Fatal("mutating a returned record corrupted the store")
	}
}

func TestUpdateCredential(t *testing.T) {
	s := New()
	createAlice(t, s)
	ctx := context.Background()

	next := password.Credential{Digest: "d2", Salt: "s2"}
	if err := s.UpdateCredential(ctx, "alice", next); err != nil {
		t.Fatalf("UpdateCredential failed: %v", err)
	}

	got, _ := s.GetUserByUsername(ctx, "alice")
	if got.Credential != next {
		t.Fatalf("credential = %+v, want %+v", got.Credential, next)
	}

	if err := s.UpdateCredential(ctx, "nobody", next); !errors.Is(err, securelogin.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListUsersSorted(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		if _, err := s.CreateUser(ctx, securelogin.CreateUserInput{Username: name}); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", name, err)
		}
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
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	createAlice(t, s)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = s.GetUserByUsername(ctx, "alice")
				_ = s.UpdateTwoFactorCounter(ctx, "alice", n)
			}
		}(int64(i))
	}
	wg.Wait()
}
