package port

import (
	"context"
	"time"
)

// TTLStore exposes typed operations against the shared key-value store where
// every key carries an expiration. It is the only coordination point between
// service instances: callers never mutate a key in place, they only add keys
// with bounded TTL or delete them.
type TTLStore interface {
	// GetJSON decodes the value at key into dest, reporting whether the key
	// existed.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	// SetJSON stores value encoded as JSON under key with the given TTL.
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the supplied keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern removes every key matching pattern. Used sparingly, only
	// for cache invalidation by prefix.
	DeletePattern(ctx context.Context, pattern string) error
}
