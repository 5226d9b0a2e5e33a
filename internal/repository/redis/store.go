package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
)

// Store implements port.TTLStore on top of a Redis client. Every key it
// writes carries an expiration; it never mutates a value in place.
type Store struct {
	client *red.Client
	prefix string
}

// NewStore wires a Redis client into a typed TTL store under the supplied
// key prefix.
func NewStore(client *red.Client, keyPrefix string) *Store {
	return &Store{client: client, prefix: strings.TrimSpace(keyPrefix)}
}

// GetJSON decodes the value at key into dest, reporting whether the key
// existed.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}

	data, err := s.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", k, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached value at %s: %w", k, err)
	}

	return true, nil
}

// SetJSON stores value encoded as JSON under key with the given TTL.
func (s *Store) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %s: %w", k, err)
	}

	if err := s.client.Set(ctx, k, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", k, err)
	}

	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}

	n, err := s.client.Exists(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", k, err)
	}

	return n > 0, nil
}

// Delete removes the supplied keys. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		k, err := s.key(key)
		if err != nil {
			return err
		}
		prefixed = append(prefixed, k)
	}

	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// DeletePattern removes every key matching pattern using a SCAN loop, so the
// server is never blocked the way KEYS would. O(store size) in the worst
// case; callers restrict it to list/aggregate cache namespaces.
func (s *Store) DeletePattern(ctx context.Context, pattern string) error {
	p, err := s.key(pattern)
	if err != nil {
		return err
	}

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, p, 1000).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", p, err)
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del scanned keys: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return nil
}

func (s *Store) key(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("key must not be empty")
	}
	if s.prefix == "" {
		return trimmed, nil
	}
	return fmt.Sprintf("%s:%s", s.prefix, trimmed), nil
}

var _ port.TTLStore = (*Store)(nil)
