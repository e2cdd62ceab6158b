package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/providers"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	"github.com/reviewuplift/backend/pkg/retry"
	"github.com/reviewuplift/backend/pkg/statetoken"
)

// ConfigService manages review-link configurations across their three
// replicas: the share token a visitor carries, the process-local store, and
// the business row. Persist writes the store synchronously and mirrors to the
// row in the background, so reads in the same process see the new value
// immediately while other instances converge through the mirror and the
// event bus.
type ConfigService struct {
	store        *ConfigStore
	businessRepo repositories.BusinessRepository
	eventBus     providers.EventBus
}

// NewConfigService creates a new config service.
func NewConfigService(store *ConfigStore, businessRepo repositories.BusinessRepository, eventBus providers.EventBus) *ConfigService {
	return &ConfigService{
		store:        store,
		businessRepo: businessRepo,
		eventBus:     eventBus,
	}
}

// DecodeToken turns a share token into a renderable configuration. It never
// fails: a missing, truncated, or corrupt token yields the defaults, and a
// valid token with missing fields is merged over them. The public review page
// must render something sensible for any URL it is handed.
func (s *ConfigService) DecodeToken(token string) entities.ReviewLinkConfig {
	cfg := entities.DefaultReviewLinkConfig()
	if err := statetoken.Decode(token, &cfg); err != nil {
		return entities.DefaultReviewLinkConfig()
	}
	if cfg.Validate() != nil {
		return entities.DefaultReviewLinkConfig()
	}
	return cfg
}

// EncodeToken produces the share token for a configuration.
func (s *ConfigService) EncodeToken(cfg entities.ReviewLinkConfig) string {
	return statetoken.Encode(cfg)
}

// Load resolves the configuration a page should render. Resolution order:
// the share token if one is present and decodes, then the process-local
// store, then the business row, then the defaults. Loading never fails.
func (s *ConfigService) Load(ctx context.Context, businessID, token string) entities.ReviewLinkConfig {
	if token != "" {
		cfg := entities.DefaultReviewLinkConfig()
		if err := statetoken.Decode(token, &cfg); err == nil && cfg.Validate() == nil {
			return cfg
		}
	}

	if businessID != "" {
		if cfg, ok := s.store.Get(businessID); ok {
			return cfg
		}

		business, err := s.businessRepo.GetByID(ctx, businessID)
		if err == nil {
			cfg := business.Config()
			s.store.Put(businessID, cfg)
			return cfg
		}
		log.Printf("Warning: Failed to load config mirror for business %s: %v", businessID, err)
	}

	return entities.DefaultReviewLinkConfig()
}

// Persist records a new configuration and returns its share token. The store
// write is synchronous; the mirror write and the change event are best-effort
// and never fail the call.
func (s *ConfigService) Persist(ctx context.Context, businessID string, cfg entities.ReviewLinkConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	s.store.Put(businessID, cfg)
	token := statetoken.Encode(cfg)

	s.publish(ctx, businessID, entities.ConfigEventUpdated, cfg, token)
	s.mirror(businessID, cfg)

	return token, nil
}

// Reset puts a business's configuration back to the defaults across all
// replicas: the store synchronously, the row through the background mirror.
// The broadcast event carries the same defaults the next Load will return.
func (s *ConfigService) Reset(ctx context.Context, businessID string) {
	cfg := entities.DefaultReviewLinkConfig()
	s.store.Put(businessID, cfg)
	s.publish(ctx, businessID, entities.ConfigEventReset, cfg, "")
	s.mirror(businessID, cfg)
}

// Subscribe streams configuration change events for one business.
func (s *ConfigService) Subscribe(ctx context.Context, businessID string) (<-chan *entities.ConfigEvent, error) {
	return s.eventBus.Subscribe(ctx, providers.GetReviewLinkChannel(businessID))
}

func (s *ConfigService) publish(ctx context.Context, businessID string, eventType entities.ConfigEventType, cfg entities.ReviewLinkConfig, token string) {
	if s.eventBus == nil {
		return
	}
	event := &entities.ConfigEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		BusinessID: businessID,
		Config:     cfg,
		Token:      token,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, providers.GetReviewLinkChannel(businessID), event); err != nil {
		log.Printf("Warning: Failed to publish config event for business %s: %v", businessID, err)
	}
}

// mirror pushes the configuration onto the business row in the background.
// The editing surface has already seen the store write succeed, so a mirror
// failure is logged and swallowed; the replicas converge on the next Persist.
func (s *ConfigService) mirror(businessID string, cfg entities.ReviewLinkConfig) {
	go func() {
		ctx := context.Background()
		err := retry.Do(ctx, retry.QuickConfig(), func() error {
			return s.businessRepo.UpdateConfig(ctx, businessID, cfg)
		})
		if err != nil {
			log.Printf("Warning: Failed to mirror config for business %s: %v", businessID, err)
		}
	}()
}
