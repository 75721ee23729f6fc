// Package event defines the domain event contract and the bus used to fan
// lifecycle changes out to subscribers (websocket push, summary rebuild).
package event

import (
	"context"
	"time"
)

// DomainEvent is implemented by every event emitted by an aggregate.
type DomainEvent interface {
	// EventType returns the event type, e.g. "application.accepted".
	EventType() string

	// AggregateID returns the ID of the aggregate the event belongs to.
	AggregateID() string

	// AggregateType returns the aggregate type, e.g. "Gig".
	AggregateType() string

	// OccurredAt returns the time the event occurred.
	OccurredAt() time.Time

	// Version returns the aggregate version at the time of the event.
	Version() int

	// Metadata returns the event metadata.
	Metadata() Metadata
}

// Bus publishes domain events to interested subscribers. Delivery is
// at-least-once and happens after the originating transaction commits.
type Bus interface {
	Publish(ctx context.Context, event DomainEvent) error
}
