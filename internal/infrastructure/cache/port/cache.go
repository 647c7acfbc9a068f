package port

import (
	"context"
	"time"
)

// Cache is the key-value contract the application depends on, currently for
// memoizing profile display names on the inbox read path. Implementations
// must be concurrency-safe and context-aware. Values are plain strings;
// serialization stays with the callers.
type Cache interface {
	// Get fetches the value for key, returning ErrMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. Zero or negative TTL means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes keys and returns how many were removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss is returned by Get for absent keys so callers can tell a miss
// apart from a transport error.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
