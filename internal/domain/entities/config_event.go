package entities

import "time"

// ConfigEventType identifies the kind of configuration change.
type ConfigEventType string

const (
	// ConfigEventUpdated is published every time a business persists its
	// review-link configuration.
	ConfigEventUpdated ConfigEventType = "config.updated"

	// ConfigEventReset is published when a business's editing state is
	// cleared (logout, session reset).
	ConfigEventReset ConfigEventType = "config.reset"
)

// ConfigEvent is broadcast on a business's channel whenever its review-link
// configuration changes. Live previews subscribe to it the same way the
// original editor page relied on hashchange notifications.
type ConfigEvent struct {
	ID         string           `json:"id"`
	Type       ConfigEventType  `json:"type"`
	BusinessID string           `json:"business_id"`
	Config     ReviewLinkConfig `json:"config"`
	Token      string           `json:"token,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}
