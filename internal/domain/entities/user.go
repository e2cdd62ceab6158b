package entities

import "time"

// UserRole separates business owners from platform administrators.
type UserRole string

const (
	RoleBusiness UserRole = "BUSINESS"
	RoleAdmin    UserRole = "ADMIN"
)

// User is a registered principal. The ID is the identity provider's uid; this
// service never handles credentials.
type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BusinessStats is the per-tenant dashboard aggregate over published reviews.
type BusinessStats struct {
	TotalReviews       int64   `json:"total_reviews"`
	AverageRating      float64 `json:"average_rating"`
	RatingDistribution [5]int64 `json:"rating_distribution"` // index 0 = 1 star
	ResponseRate       float64 `json:"response_rate"` // share of reviews with a reply, percent
	LinkClicks         int64   `json:"link_clicks"`
}
