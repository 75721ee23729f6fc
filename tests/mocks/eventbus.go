// Package mocks provides in-memory test doubles shared across packages.
package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/gigwork/internal/domain/event"
)

// EventBus is an in-memory event.Bus that records published events.
type EventBus struct {
	mu     sync.Mutex
	events []event.DomainEvent

	// PublishErr, when set, is returned by Publish.
	PublishErr error
}

// NewEventBus creates an empty recording bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Publish records the event.
func (b *EventBus) Publish(_ context.Context, evt event.DomainEvent) error {
	if b.PublishErr != nil {
		return b.PublishErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
	return nil
}

// Events returns a copy of the recorded events.
func (b *EventBus) Events() []event.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.DomainEvent, len(b.events))
	copy(out, b.events)
	return out
}

// EventsOfType returns recorded events with the given type.
func (b *EventBus) EventsOfType(eventType string) []event.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event.DomainEvent
	for _, evt := range b.events {
		if evt.EventType() == eventType {
			out = append(out, evt)
		}
	}
	return out
}
