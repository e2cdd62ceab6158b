package services

import (
	"sync"

	"github.com/reviewuplift/backend/internal/domain/entities"
)

// ConfigStore holds the most recently persisted review-link configuration per
// business for the lifetime of the process. It is a read-your-writes layer in
// front of the database mirror: a Persist call updates it synchronously, so a
// Load issued immediately afterward sees the new value even while the mirror
// write is still in flight.
type ConfigStore struct {
	mu      sync.RWMutex
	configs map[string]entities.ReviewLinkConfig
}

// NewConfigStore creates an empty config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{configs: make(map[string]entities.ReviewLinkConfig)}
}

// Put stores the configuration for a business.
func (s *ConfigStore) Put(businessID string, cfg entities.ReviewLinkConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[businessID] = cfg
}

// Get returns the stored configuration and whether one exists.
func (s *ConfigStore) Get(businessID string) (entities.ReviewLinkConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[businessID]
	return cfg, ok
}
