package event

import "time"

// BaseEvent is the common implementation embedded by concrete events.
type BaseEvent struct {
	eventType     string
	aggregateID   string
	aggregateType string
	occurredAt    time.Time
	version       int
	metadata      Metadata
}

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent(eventType, aggregateID, aggregateType string, version int, metadata Metadata) BaseEvent {
	return BaseEvent{
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now(),
		version:       version,
		metadata:      metadata,
	}
}

// EventType returns the event type.
func (e BaseEvent) EventType() string { return e.eventType }

// AggregateID returns the aggregate ID.
func (e BaseEvent) AggregateID() string { return e.aggregateID }

// AggregateType returns the aggregate type.
func (e BaseEvent) AggregateType() string { return e.aggregateType }

// OccurredAt returns the time the event occurred.
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }

// Version returns the aggregate version.
func (e BaseEvent) Version() int { return e.version }

// Metadata returns the event metadata.
func (e BaseEvent) Metadata() Metadata { return e.metadata }
