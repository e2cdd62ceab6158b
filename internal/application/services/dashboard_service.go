package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/providers"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// dashboardStatsTTL is short: the dashboard tolerates a minute of staleness.
const dashboardStatsTTL = 60

// DashboardService computes per-business review statistics.
type DashboardService struct {
	db    *sqlx.DB
	cache providers.CacheProvider
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(db *sqlx.DB, cache providers.CacheProvider) *DashboardService {
	return &DashboardService{db: db, cache: cache}
}

func dashboardCacheKey(businessID string) string {
	return "dashboard:stats:" + businessID
}

type statsRow struct {
	TotalReviews  int64   `db:"total_reviews"`
	AverageRating float64 `db:"average_rating"`
	Star1         int64   `db:"star1"`
	Star2         int64   `db:"star2"`
	Star3         int64   `db:"star3"`
	Star4         int64   `db:"star4"`
	Star5         int64   `db:"star5"`
	RepliedCount  int64   `db:"replied_count"`
	LinkClicks    int64   `db:"link_clicks"`
}

// Stats returns the business's dashboard numbers: published review count,
// average rating, per-star distribution, reply rate, and link clicks.
func (s *DashboardService) Stats(ctx context.Context, businessID string) (*entities.BusinessStats, error) {
	cacheKey := dashboardCacheKey(businessID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stats entities.BusinessStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
			log.Printf("Warning: Failed to unmarshal cached dashboard stats for %s: %v", businessID, err)
		}
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'published') AS total_reviews,
			COALESCE(AVG(rating) FILTER (WHERE status = 'published'), 0) AS average_rating,
			COUNT(*) FILTER (WHERE rating = 1) AS star1,
			COUNT(*) FILTER (WHERE rating = 2) AS star2,
			COUNT(*) FILTER (WHERE rating = 3) AS star3,
			COUNT(*) FILTER (WHERE rating = 4) AS star4,
			COUNT(*) FILTER (WHERE rating = 5) AS star5,
			COUNT(*) FILTER (WHERE replied) AS replied_count,
			(SELECT COALESCE(link_clicks, 0) FROM businesses WHERE id = $1) AS link_clicks
		FROM business_submissions
		WHERE business_id = $1
	`

	var row statsRow
	if err := s.db.GetContext(ctx, &row, query, businessID); err != nil {
		return nil, apperrors.NewInternalError("failed to compute dashboard stats", err)
	}

	total := row.Star1 + row.Star2 + row.Star3 + row.Star4 + row.Star5
	stats := &entities.BusinessStats{
		TotalReviews:       row.TotalReviews,
		AverageRating:      row.AverageRating,
		RatingDistribution: [5]int64{row.Star1, row.Star2, row.Star3, row.Star4, row.Star5},
		LinkClicks:         row.LinkClicks,
	}
	if total > 0 {
		stats.ResponseRate = float64(row.RepliedCount) / float64(total)
	}

	if s.cache != nil {
		go func() {
			bgCtx := context.Background()
			if data, err := json.Marshal(stats); err == nil {
				if err := s.cache.Set(bgCtx, cacheKey, data, dashboardStatsTTL); err != nil {
					log.Printf("Warning: Failed to cache dashboard stats for %s: %v", businessID, err)
				}
			}
		}()
	}

	return stats, nil
}
