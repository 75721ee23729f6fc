package gig

import (
	"github.com/lllypuk/gigwork/internal/domain/event"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Event types emitted by the gig aggregate.
const (
	EventTypeCreated       = "gig.created"
	EventTypeAssigned      = "gig.assigned"
	EventTypeStatusChanged = "gig.status_changed"
	EventTypeCompleted     = "gig.completed"
)

// AggregateType identifies gig events on the bus.
const AggregateType = "Gig"

// Created is emitted when a client posts a gig.
type Created struct {
	event.BaseEvent

	GigID    uuid.UUID `json:"gig_id"`
	PosterID uuid.UUID `json:"poster_id"`
	Title    string    `json:"title"`
}

// NewCreated creates a Created event.
func NewCreated(gigID, posterID uuid.UUID, title string, metadata event.Metadata) *Created {
	return &Created{
		BaseEvent: event.NewBaseEvent(EventTypeCreated, gigID.String(), AggregateType, 1, metadata),
		GigID:     gigID,
		PosterID:  posterID,
		Title:     title,
	}
}

// Assigned is emitted when an accepted application assigns the gig.
type Assigned struct {
	event.BaseEvent

	GigID        uuid.UUID `json:"gig_id"`
	PosterID     uuid.UUID `json:"poster_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Title        string    `json:"title"`
}

// NewAssigned creates an Assigned event.
func NewAssigned(gigID, posterID, freelancerID uuid.UUID, title string, metadata event.Metadata) *Assigned {
	return &Assigned{
		BaseEvent:    event.NewBaseEvent(EventTypeAssigned, gigID.String(), AggregateType, 1, metadata),
		GigID:        gigID,
		PosterID:     posterID,
		FreelancerID: freelancerID,
		Title:        title,
	}
}

// StatusChanged is emitted on every lifecycle step after assignment.
type StatusChanged struct {
	event.BaseEvent

	GigID     uuid.UUID `json:"gig_id"`
	PosterID  uuid.UUID `json:"poster_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// NewStatusChanged creates a StatusChanged event. When the gig reaches
// completed the event type is gig.completed so summary rebuilds can
// subscribe to completions alone.
func NewStatusChanged(gigID, posterID uuid.UUID, oldStatus, newStatus Status, metadata event.Metadata) *StatusChanged {
	eventType := EventTypeStatusChanged
	if newStatus == StatusCompleted {
		eventType = EventTypeCompleted
	}
	return &StatusChanged{
		BaseEvent: event.NewBaseEvent(eventType, gigID.String(), AggregateType, 1, metadata),
		GigID:     gigID,
		PosterID:  posterID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}
