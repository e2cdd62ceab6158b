package providers

import (
	"context"

	"github.com/reviewuplift/backend/internal/domain/entities"
)

// EventBus carries review-link configuration events between the editing
// surface and live-preview consumers, within and across instances.
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel
	Publish(ctx context.Context, channel string, event *entities.ConfigEvent) error

	// Subscribe subscribes to events on a channel; the returned channel is
	// closed when ctx is done or the bus shuts down
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ConfigEvent, error)

	// Unsubscribe tears down a channel's subscription
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelReviewLinkPrefix is the prefix for per-business config channels.
const EventChannelReviewLinkPrefix = "review-link:"

// GetReviewLinkChannel returns the config channel for one business.
func GetReviewLinkChannel(businessID string) string {
	return EventChannelReviewLinkPrefix + businessID
}
