package database

import (
	"context"
	"encoding/json"
	"log"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/providers"
	"github.com/reviewuplift/backend/internal/domain/repositories"
)

// CachedBusinessAdapter wraps BusinessAdapter with caching. Business rows are
// read on every public review-page load, so they are the hottest reads in the
// system.
type CachedBusinessAdapter struct {
	adapter repositories.BusinessRepository
	cache   providers.CacheProvider
}

// NewCachedBusinessAdapter creates a new cached business adapter.
func NewCachedBusinessAdapter(adapter repositories.BusinessRepository, cache providers.CacheProvider) repositories.BusinessRepository {
	return &CachedBusinessAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	businessByIDTTL = 300 // 5 minutes for single business
)

func businessCacheKey(id string) string {
	return "business:" + id
}

// GetByID retrieves a business by ID with caching.
func (a *CachedBusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	cacheKey := businessCacheKey(id)

	// Try to get from cache first
	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var business entities.Business
		if err := json.Unmarshal(cached, &business); err == nil {
			return &business, nil
		}
		// If unmarshal fails, continue to fetch from DB
		log.Printf("Failed to unmarshal cached business %s: %v", id, err)
	}

	// Cache miss - fetch from database
	business, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(business); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, businessByIDTTL); err != nil {
				log.Printf("Failed to cache business %s: %v", id, err)
			}
		}
	}()

	return business, nil
}

func (a *CachedBusinessAdapter) invalidate(id string) {
	go func() {
		bgCtx := context.Background()
		if err := a.cache.Delete(bgCtx, businessCacheKey(id)); err != nil {
			log.Printf("Failed to invalidate business cache %s: %v", id, err)
		}
	}()
}

// Create creates a business. Nothing to invalidate for a new row.
func (a *CachedBusinessAdapter) Create(ctx context.Context, business *entities.Business) error {
	return a.adapter.Create(ctx, business)
}

// Update replaces the business row and invalidates its cache.
func (a *CachedBusinessAdapter) Update(ctx context.Context, business *entities.Business) error {
	if err := a.adapter.Update(ctx, business); err != nil {
		return err
	}
	a.invalidate(business.ID)
	return nil
}

// UpdateConfig merges the review-link configuration and invalidates the cache.
func (a *CachedBusinessAdapter) UpdateConfig(ctx context.Context, id string, cfg entities.ReviewLinkConfig) error {
	if err := a.adapter.UpdateConfig(ctx, id, cfg); err != nil {
		return err
	}
	a.invalidate(id)
	return nil
}

// UpdateBranches replaces the branch document and invalidates the cache.
func (a *CachedBusinessAdapter) UpdateBranches(ctx context.Context, id string, branches []entities.Branch) error {
	if err := a.adapter.UpdateBranches(ctx, id, branches); err != nil {
		return err
	}
	a.invalidate(id)
	return nil
}

// UpdateStatus changes the tenant status and invalidates the cache.
func (a *CachedBusinessAdapter) UpdateStatus(ctx context.Context, id string, status entities.BusinessStatus) error {
	if err := a.adapter.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	a.invalidate(id)
	return nil
}

// IncrementLinkClicks bumps the counter. The cached row keeps its slightly
// stale click count until the TTL expires; clicks are analytics, not state.
func (a *CachedBusinessAdapter) IncrementLinkClicks(ctx context.Context, id string) error {
	return a.adapter.IncrementLinkClicks(ctx, id)
}

// ListOverviews is an admin view and always goes to the database.
func (a *CachedBusinessAdapter) ListOverviews(ctx context.Context, limit, offset int) ([]*entities.BusinessOverview, error) {
	return a.adapter.ListOverviews(ctx, limit, offset)
}
