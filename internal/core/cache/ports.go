package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist or has expired.
var ErrNotFound = errors.New("key not found")

// Cache defines the key/value operations the session and order stores rely on.
// This is a port that can be implemented by different providers (Redis, in-memory, etc.).
type Cache interface {
	// Get retrieves a value by key. A missing key yields an error matching ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
