package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitRepository_SlidingWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{
		KeyPrefix: "arch:rate-limit",
		TTL:       2 * time.Minute,
	})

	ctx := context.Background()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	window := time.Minute

	for _, offset := range []time.Duration{0, 10 * time.Second, 50 * time.Second} {
		if err := repo.RecordAttempt(ctx, "10.0.0.1", base.Add(offset)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "10.0.0.1", window, base.Add(50*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts in window, got %d", count)
	}

	// Sixty-five seconds after the first attempt only two remain in view.
	count, err = repo.CountAttempts(ctx, "10.0.0.1", window, base.Add(65*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 attempts in window, got %d", count)
	}

	oldest, found, err := repo.OldestAttempt(ctx, "10.0.0.1", window, base.Add(65*time.Second))
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !found {
		t.Fatalf("expected an attempt inside the window")
	}
	if !oldest.Equal(base.Add(10 * time.Second)) {
		t.Fatalf("unexpected oldest attempt: %s", oldest)
	}

	if err := repo.TrimWindow(ctx, "10.0.0.1", window, base.Add(65*time.Second)); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}
	count, err = repo.CountAttempts(ctx, "10.0.0.1", 10*time.Minute, base.Add(65*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected trim to drop the expired attempt, got %d", count)
	}
}

func TestRateLimitRepository_RejectsNonPositiveWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "arch:rate-limit"})

	ctx := context.Background()
	if _, err := repo.CountAttempts(ctx, "10.0.0.1", 0, time.Now()); err == nil {
		t.Fatalf("expected error for zero window")
	}
	if err := repo.TrimWindow(ctx, "10.0.0.1", -time.Second, time.Now()); err == nil {
		t.Fatalf("expected error for negative window")
	}
	if _, _, err := repo.OldestAttempt(ctx, "10.0.0.1", 0, time.Now()); err == nil {
		t.Fatalf("expected error for zero window")
	}
}

func TestRateLimitRepository_IdentifiersAreIsolated(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "arch:rate-limit"})

	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	if err := repo.RecordAttempt(ctx, "10.0.0.1", now); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "10.0.0.2", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected other identifier to be untouched, got %d", count)
	}
}
