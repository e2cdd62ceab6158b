package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewuplift/backend/internal/domain/entities"
)

func TestDefaultReviewLinkConfig(t *testing.T) {
	cfg := entities.DefaultReviewLinkConfig()

	assert.Empty(t, cfg.BusinessName)
	assert.Equal(t, "How was your experience with us?", cfg.PreviewText)
	assert.Nil(t, cfg.PreviewImage)
	assert.Equal(t, "Do you want to leave us a review?", cfg.SocialPreviewTitle)
	assert.Equal(t, "https://go.reviewuplift.com/your-business", cfg.ReviewLinkURL)
	assert.True(t, cfg.IsReviewGatingEnabled)
	assert.Zero(t, cfg.Rating)
}

func TestReviewLinkConfig_Validate(t *testing.T) {
	cfg := entities.DefaultReviewLinkConfig()
	require.NoError(t, cfg.Validate())

	cfg.Rating = 5
	require.NoError(t, cfg.Validate())

	cfg.Rating = 6
	assert.Error(t, cfg.Validate())

	cfg.Rating = -1
	assert.Error(t, cfg.Validate())
}

func TestBusiness_ConfigRoundTrip(t *testing.T) {
	image := "data:image/png;base64,aGk="
	business := &entities.Business{
		ID:                    "biz-1",
		BusinessName:          "Demo Coffee",
		PreviewText:           "Tell us how we did",
		PreviewImage:          &image,
		SocialPreviewTitle:    "Review Demo Coffee",
		ReviewLinkURL:         "https://go.reviewuplift.com/demo-coffee",
		IsReviewGatingEnabled: false,
	}

	cfg := business.Config()
	assert.Equal(t, "Demo Coffee", cfg.BusinessName)
	assert.Equal(t, "Tell us how we did", cfg.PreviewText)
	assert.Equal(t, &image, cfg.PreviewImage)
	assert.False(t, cfg.IsReviewGatingEnabled)
	assert.Zero(t, cfg.Rating)

	fresh := &entities.Business{ID: "biz-1"}
	fresh.ApplyConfig(cfg)
	assert.Equal(t, business.BusinessName, fresh.BusinessName)
	assert.Equal(t, business.PreviewText, fresh.PreviewText)
	assert.Equal(t, business.ReviewLinkURL, fresh.ReviewLinkURL)
	assert.Equal(t, business.IsReviewGatingEnabled, fresh.IsReviewGatingEnabled)
}

func TestBusiness_Config_FillsDefaultsForBlankFields(t *testing.T) {
	business := &entities.Business{ID: "biz-2", BusinessName: "Bare Tenant"}

	cfg := business.Config()
	defaults := entities.DefaultReviewLinkConfig()
	assert.Equal(t, defaults.PreviewText, cfg.PreviewText)
	assert.Equal(t, defaults.SocialPreviewTitle, cfg.SocialPreviewTitle)
	assert.Equal(t, defaults.ReviewLinkURL, cfg.ReviewLinkURL)
}
