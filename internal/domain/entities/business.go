package entities

import "time"

// BusinessStatus is the tenant lifecycle managed by administrators.
type BusinessStatus string

const (
	BusinessStatusActive    BusinessStatus = "active"
	BusinessStatusPending   BusinessStatus = "pending"
	BusinessStatusSuspended BusinessStatus = "suspended"
)

// ValidBusinessStatus reports whether s is a known tenant status.
func ValidBusinessStatus(s BusinessStatus) bool {
	switch s {
	case BusinessStatusActive, BusinessStatusPending, BusinessStatusSuspended:
		return true
	}
	return false
}

// Branch is one physical location of a business. Branches live as a JSON
// document on the business row, matching the original nested-document shape.
type Branch struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	GoogleReviewLink string    `json:"googleReviewLink"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Business is one tenant of the product. Its row doubles as the remote mirror
// of the review-link configuration.
type Business struct {
	ID                    string         `json:"id" db:"id"` // identity provider uid of the owner
	OwnerEmail            string         `json:"owner_email" db:"owner_email"`
	BusinessName          string         `json:"business_name" db:"business_name"`
	Category              string         `json:"category" db:"category"`
	PreviewText           string         `json:"preview_text" db:"preview_text"`
	PreviewImage          *string        `json:"preview_image" db:"preview_image"`
	SocialPreviewTitle    string         `json:"social_preview_title" db:"social_preview_title"`
	ReviewLinkURL         string         `json:"review_link_url" db:"review_link_url"`
	IsReviewGatingEnabled bool           `json:"is_review_gating_enabled" db:"is_review_gating_enabled"`
	Status                BusinessStatus `json:"status" db:"status"`
	LinkClicks            int64          `json:"link_clicks" db:"link_clicks"`
	Branches              []Branch       `json:"branches" db:"branches"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`
}

// Config projects the mirrored review-link configuration out of the row.
// The transient rating is never mirrored, so it stays zero here.
func (b *Business) Config() ReviewLinkConfig {
	cfg := DefaultReviewLinkConfig()
	cfg.BusinessName = b.BusinessName
	if b.PreviewText != "" {
		cfg.PreviewText = b.PreviewText
	}
	cfg.PreviewImage = b.PreviewImage
	if b.SocialPreviewTitle != "" {
		cfg.SocialPreviewTitle = b.SocialPreviewTitle
	}
	if b.ReviewLinkURL != "" {
		cfg.ReviewLinkURL = b.ReviewLinkURL
	}
	cfg.IsReviewGatingEnabled = b.IsReviewGatingEnabled
	return cfg
}

// ApplyConfig folds a persisted configuration back onto the row.
func (b *Business) ApplyConfig(cfg ReviewLinkConfig) {
	if cfg.BusinessName != "" {
		b.BusinessName = cfg.BusinessName
	}
	b.PreviewText = cfg.PreviewText
	b.PreviewImage = cfg.PreviewImage
	b.SocialPreviewTitle = cfg.SocialPreviewTitle
	b.ReviewLinkURL = cfg.ReviewLinkURL
	b.IsReviewGatingEnabled = cfg.IsReviewGatingEnabled
}

// BusinessOverview is the admin listing row: the tenant plus review activity.
type BusinessOverview struct {
	Business      Business `json:"business"`
	ReviewCount   int64    `json:"review_count"`
	AverageRating float64  `json:"average_rating"`
}
