package providers

import (
	"context"
)

// CacheProvider is the shared byte cache behind hot business reads, review
// sessions, rate-limit counters, and submission fingerprints. A Get on a
// missing or expired key returns an error.
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}
