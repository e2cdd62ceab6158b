package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/providers"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

func sessionCacheKey(id string) string {
	return "review-session:" + id
}

// SessionStore keeps in-flight review sessions in the shared cache so any
// instance can serve the next request of a visitor's rating flow.
type SessionStore struct {
	cache providers.CacheProvider
}

var _ providers.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a cache-backed session store.
func NewSessionStore(cache providers.CacheProvider) *SessionStore {
	return &SessionStore{cache: cache}
}

// Save upserts a session with the given TTL.
func (s *SessionStore) Save(ctx context.Context, session *entities.ReviewSession, ttlSeconds int) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal review session", err)
	}
	if err := s.cache.Set(ctx, sessionCacheKey(session.ID), data, ttlSeconds); err != nil {
		return apperrors.NewInternalError("failed to save review session", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*entities.ReviewSession, error) {
	data, err := s.cache.Get(ctx, sessionCacheKey(id))
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review session %s not found", id))
	}
	session := &entities.ReviewSession{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal review session", err)
	}
	return session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionCacheKey(id))
}

// LocalSessionStore is the in-process fallback used when the cache is
// unavailable. Expired sessions are dropped lazily on access and by a
// periodic sweep.
type LocalSessionStore struct {
	mu       sync.Mutex
	sessions map[string]localSessionEntry
}

type localSessionEntry struct {
	session   *entities.ReviewSession
	expiresAt time.Time
}

var _ providers.SessionStore = (*LocalSessionStore)(nil)

// NewLocalSessionStore creates an in-memory session store.
func NewLocalSessionStore() *LocalSessionStore {
	return &LocalSessionStore{sessions: make(map[string]localSessionEntry)}
}

// Save upserts a session with the given TTL.
func (s *LocalSessionStore) Save(_ context.Context, session *entities.ReviewSession, ttlSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.sessions[session.ID] = localSessionEntry{
		session:   session,
		expiresAt: time.Now().Add(time.Duration(ttlSeconds) * time.Second),
	}
	return nil
}

// Get retrieves a session by ID.
func (s *LocalSessionStore) Get(_ context.Context, id string) (*entities.ReviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review session %s not found", id))
	}
	return entry.session, nil
}

// Delete removes a session.
func (s *LocalSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *LocalSessionStore) sweepLocked() {
	if len(s.sessions) < 1024 {
		return
	}
	now := time.Now()
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
