package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*miniredis.Miniredis, *Limiter) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, New(client, cfg)
}

func TestCheckLoginFreshKeyAllowed(t *testing.T) {
	_, l := newTestLimiter(t, Config{MaxLoginAttempts: 3, LoginCooldown: time.Minute})

	if err := l.CheckLogin(context.Background(), "alice", ""); err != nil {
		t.Fatalf("CheckLogin on fresh key failed: %v", err)
	}
}

func TestRecordFailureExhaustsBudget(t *testing.T) {
	_, l := newTestLimiter(t, Config{MaxLoginAttempts: 3, LoginCooldown: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.RecordFailure(ctx, "alice", ""); err != nil {
			t.Fatalf("RecordFailure %d returned %v", i+1, err)
		}
		// Budget is consumed on the failure after the check, so the check
		// flips only once the full budget is spent.
		err := l.CheckLogin(ctx, "alice", "")
		if i < 2 && err != nil {
			t.Fatalf("CheckLogin after %d failures returned %v", i+1, err)
		}
		if i == 2 && !errors.Is(err, ErrRateLimited) {
			t.Fatalf("CheckLogin after 3 failures returned %v, want ErrRateLimited", err)
		}
	}

	if err := l.RecordFailure(ctx, "alice", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("RecordFailure over budget returned %v, want ErrRateLimited", err)
	}
}

func TestRecordFailureSetsTTLOnce(t *testing.T) {
	mr, l := newTestLimiter(t, Config{MaxLoginAttempts: 5, LoginCooldown: time.Minute})
	ctx := context.Background()

	if err := l.RecordFailure(ctx, "alice", ""); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if ttl := mr.TTL("sl:lu:alice"); ttl != time.Minute {
		t.Fatalf("TTL = %v, want %v", ttl, time.Minute)
	}

	// Later failures must not extend the window.
	mr.FastForward(30 * time.Second)
	if err := l.RecordFailure(ctx, "alice", ""); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if ttl := mr.TTL("sl:lu:alice"); ttl != 30*time.Second {
		t.Fatalf("TTL after second failure = %v, want %v", ttl, 30*time.Second)
	}
}

func TestCooldownClearsCounter(t *testing.T) {
	mr, l := newTestLimiter(t, Config{MaxLoginAttempts: 1, LoginCooldown: time.Minute})
	ctx := context.Background()

	if err := l.RecordFailure(ctx, "alice", ""); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if err := l.CheckLogin(ctx, "alice", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("CheckLogin returned %v, want ErrRateLimited", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := l.CheckLogin(ctx, "alice", ""); err != nil {
		t.Fatalf("CheckLogin after cooldown returned %v", err)
	}
}

func TestResetClearsBothDimensions(t *testing.T) {
	mr, l := newTestLimiter(t, Config{EnableIPThrottle: true, MaxLoginAttempts: 3, LoginCooldown: time.Minute})
	ctx := context.Background()

	if err := l.RecordFailure(ctx, "alice", "203.0.113.9"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if !mr.Exists("sl:lu:alice") || !mr.Exists("sl:li:203.0.113.9") {
		t.Fatal("expected both counters to exist")
	}

	if err := l.Reset(ctx, "alice", "203.0.113.9"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if mr.Exists("sl:lu:alice") || mr.Exists("sl:li:203.0.113.9") {
		t.Fatal("expected both counters cleared")
	}
}

func TestIPThrottleDisabledIgnoresIP(t *testing.T) {
	mr, l := newTestLimiter(t, Config{EnableIPThrottle: false, MaxLoginAttempts: 3, LoginCooldown: time.Minute})

	if err := l.RecordFailure(context.Background(), "alice", "203.0.113.9"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if mr.Exists("sl:li:203.0.113.9") {
		t.Fatal("IP counter written with IP throttle disabled")
	}
}

func TestRedisOutageIsWrapped(t *testing.T) {
	mr, l := newTestLimiter(t, Config{MaxLoginAttempts: 3, LoginCooldown: time.Minute})
	mr.Close()

	if err := l.CheckLogin(context.Background(), "alice", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("CheckLogin returned %v, want ErrRedisUnavailable", err)
	}
	if err := l.RecordFailure(context.Background(), "alice", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("RecordFailure returned %v, want ErrRedisUnavailable", err)
	}
	if err := l.Reset(context.Background(), "alice", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("Reset returned %v, want ErrRedisUnavailable", err)
	}
}
