package events

import (
	"context"
	"sync"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/providers"
)

// LocalEventBus is an in-process EventBus used when Redis is unavailable.
// Cross-instance propagation is lost but editor and preview served by the
// same process still stay in sync.
type LocalEventBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.ConfigEvent]struct{}
	closed      bool
}

// NewLocalEventBus creates an in-process event bus.
func NewLocalEventBus() providers.EventBus {
	return &LocalEventBus{
		subscribers: make(map[string]map[chan *entities.ConfigEvent]struct{}),
	}
}

// Publish delivers the event to current subscribers of the channel. Slow
// subscribers are skipped rather than blocking the publisher.
func (b *LocalEventBus) Publish(ctx context.Context, channel string, event *entities.ConfigEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for subscriber := range b.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber on the channel.
func (b *LocalEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ConfigEvent, error) {
	eventChan := make(chan *entities.ConfigEvent, 100)

	b.mu.Lock()
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.ConfigEvent]struct{})
	}
	b.subscribers[channel][eventChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(channel, eventChan)
	}()

	return eventChan, nil
}

func (b *LocalEventBus) remove(channel string, eventChan chan *entities.ConfigEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers, ok := b.subscribers[channel]
	if !ok {
		return
	}
	if _, ok := subscribers[eventChan]; !ok {
		return
	}
	delete(subscribers, eventChan)
	close(eventChan)
	if len(subscribers) == 0 {
		delete(b.subscribers, channel)
	}
}

// Unsubscribe drops all subscribers of a channel.
func (b *LocalEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for subscriber := range b.subscribers[channel] {
		close(subscriber)
	}
	delete(b.subscribers, channel)
	return nil
}

// Close shuts down all subscriptions.
func (b *LocalEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subscribers := range b.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(b.subscribers, channel)
	}
	return nil
}
