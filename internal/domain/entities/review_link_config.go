package entities

import (
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// ReviewLinkConfig is the branded "leave a review" page configuration owned by
// one business. One live copy is reflected in three places — the share token,
// the process-local store, and the business row — which must eventually agree.
// The row is authoritative across sessions; the token and store win within one.
type ReviewLinkConfig struct {
	BusinessName          string  `json:"businessName"`
	PreviewText           string  `json:"previewText"`
	PreviewImage          *string `json:"previewImage"` // data-URI encoded, optional
	SocialPreviewTitle    string  `json:"socialPreviewTitle"`
	ReviewLinkURL         string  `json:"reviewLinkUrl"`
	IsReviewGatingEnabled bool    `json:"isReviewGatingEnabled"`

	// Rating is transient in-progress UI state carried only so the live
	// preview tracks the editor. 0 means no selection; it is never submitted.
	Rating int `json:"rating"`
}

// DefaultReviewLinkConfig returns the configuration every page can render
// before a business has customized anything. Decoding always merges over this
// value so a partial or corrupt token still produces a complete config.
func DefaultReviewLinkConfig() ReviewLinkConfig {
	return ReviewLinkConfig{
		BusinessName:          "",
		PreviewText:           "How was your experience with us?",
		PreviewImage:          nil,
		SocialPreviewTitle:    "Do you want to leave us a review?",
		ReviewLinkURL:         "https://go.reviewuplift.com/your-business",
		IsReviewGatingEnabled: true,
		Rating:                0,
	}
}

// Validate checks the config invariants.
func (c *ReviewLinkConfig) Validate() error {
	if c.Rating < 0 || c.Rating > 5 {
		return apperrors.NewValidationError("rating must be between 0 and 5")
	}
	return nil
}
