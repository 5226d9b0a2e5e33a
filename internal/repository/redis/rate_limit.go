package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
)

// SlidingWindowConfig tunes the attempt store. TTL caps how long an idle
// identifier's sorted set lingers; it should exceed the widest rule window.
type SlidingWindowConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// RateLimitRepository keeps one sorted set per identifier, scored by the
// attempt's unix-nano timestamp, so windows can be counted and trimmed with
// plain range commands.
type RateLimitRepository struct {
	client *redis.Client
	cfg    SlidingWindowConfig
}

func NewRateLimitRepository(client *redis.Client, cfg SlidingWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// RecordAttempt appends an attempt and refreshes the set's TTL.
func (r *RateLimitRepository) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	key := r.storageKey(identifier)
	nanos := at.UnixNano()

	if err := r.client.ZAdd(ctx, key, redis.Z{Score: float64(nanos), Member: nanos}).Err(); err != nil {
		return fmt.Errorf("redis zadd: %w", err)
	}
	if r.cfg.TTL > 0 {
		if err := r.client.Expire(ctx, key, r.cfg.TTL).Err(); err != nil {
			return fmt.Errorf("redis expire: %w", err)
		}
	}
	return nil
}

// CountAttempts counts attempts inside the window ending at reference.
func (r *RateLimitRepository) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	lower, upper, err := windowBounds(window, reference)
	if err != nil {
		return 0, err
	}

	count, err := r.client.ZCount(ctx, r.storageKey(identifier), lower, upper).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zcount: %w", err)
	}
	return int(count), nil
}

// TrimWindow drops attempts that have aged out of the window.
func (r *RateLimitRepository) TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error {
	lower, _, err := windowBounds(window, reference)
	if err != nil {
		return err
	}

	if err := r.client.ZRemRangeByScore(ctx, r.storageKey(identifier), "-inf", lower).Err(); err != nil {
		return fmt.Errorf("redis zremrangebyscore: %w", err)
	}
	return nil
}

// OldestAttempt returns the earliest attempt still inside the window, which
// is what determines when the window next frees up.
func (r *RateLimitRepository) OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	lower, upper, err := windowBounds(window, reference)
	if err != nil {
		return time.Time{}, false, err
	}

	members, err := r.client.ZRangeByScore(ctx, r.storageKey(identifier), &redis.ZRangeBy{
		Min:   lower,
		Max:   upper,
		Count: 1,
	}).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis zrangebyscore: %w", err)
	}
	if len(members) == 0 {
		return time.Time{}, false, nil
	}

	nanos, err := strconv.ParseInt(members[0], 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse timestamp: %w", err)
	}
	return time.Unix(0, nanos), true, nil
}

func (r *RateLimitRepository) storageKey(identifier string) string {
	if r.cfg.KeyPrefix == "" {
		return identifier
	}
	return r.cfg.KeyPrefix + ":" + identifier
}

func windowBounds(window time.Duration, reference time.Time) (string, string, error) {
	if window <= 0 {
		return "", "", errors.New("window must be positive")
	}
	lower := fmt.Sprintf("%f", float64(reference.Add(-window).UnixNano()))
	upper := fmt.Sprintf("%f", float64(reference.UnixNano()))
	return lower, upper, nil
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
