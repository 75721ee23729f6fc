package application

import (
	"github.com/lllypuk/gigwork/internal/domain/event"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Event types emitted by the application aggregate.
const (
	EventTypeSubmitted = "application.submitted"
	EventTypeAccepted  = "application.accepted"
	EventTypeRejected  = "application.rejected"
)

// AggregateType identifies application events on the bus.
const AggregateType = "Application"

// Submitted is emitted when a freelancer applies to a gig.
type Submitted struct {
	event.BaseEvent

	ApplicationID uuid.UUID `json:"application_id"`
	GigID         uuid.UUID `json:"gig_id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	PosterID      uuid.UUID `json:"poster_id"`
}

// NewSubmitted creates a Submitted event.
func NewSubmitted(applicationID, gigID, applicantID, posterID uuid.UUID, metadata event.Metadata) *Submitted {
	return &Submitted{
		BaseEvent:     event.NewBaseEvent(EventTypeSubmitted, applicationID.String(), AggregateType, 1, metadata),
		ApplicationID: applicationID,
		GigID:         gigID,
		ApplicantID:   applicantID,
		PosterID:      posterID,
	}
}

// Resolved is emitted when an application is accepted or rejected.
type Resolved struct {
	event.BaseEvent

	ApplicationID uuid.UUID `json:"application_id"`
	GigID         uuid.UUID `json:"gig_id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	Status        Status    `json:"status"`
}

// NewResolved creates a Resolved event typed by the resolution.
func NewResolved(applicationID, gigID, applicantID uuid.UUID, status Status, metadata event.Metadata) *Resolved {
	eventType := EventTypeRejected
	if status == StatusAccepted {
		eventType = EventTypeAccepted
	}
	return &Resolved{
		BaseEvent:     event.NewBaseEvent(eventType, applicationID.String(), AggregateType, 1, metadata),
		ApplicationID: applicationID,
		GigID:         gigID,
		ApplicantID:   applicantID,
		Status:        status,
	}
}
