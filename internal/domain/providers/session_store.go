package providers

import (
	"context"

	"github.com/reviewuplift/backend/internal/domain/entities"
)

// SessionStore persists in-flight review sessions between requests. Sessions
// are short-lived and disposable; a store may evict them after the TTL.
type SessionStore interface {
	// Save upserts a session with the given TTL
	Save(ctx context.Context, session *entities.ReviewSession, ttlSeconds int) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*entities.ReviewSession, error)

	// Delete removes a session
	Delete(ctx context.Context, id string) error
}
