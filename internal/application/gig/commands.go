// Package gig contains use cases for posting and advancing gigs.
package gig

import (
	"time"

	"github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// CreateGigCommand posts a new gig for a client.
type CreateGigCommand struct {
	PosterID    uuid.UUID
	Title       string
	Description string
	Priority    gig.Priority
	Budget      float64
	Deadline    time.Time
	Skills      []string
}

// ChangeStatusCommand advances a gig one lifecycle step.
type ChangeStatusCommand struct {
	GigID     uuid.UUID
	ActorID   uuid.UUID
	NewStatus gig.Status
}

// UpdateProgressCommand sets the progress percentage. Only the assigned
// freelancer reports progress.
type UpdateProgressCommand struct {
	GigID    uuid.UUID
	ActorID  uuid.UUID
	Progress int
}

// AddMilestoneCommand appends a milestone to a gig.
type AddMilestoneCommand struct {
	GigID       uuid.UUID
	ActorID     uuid.UUID
	Title       string
	Description string
	DueDate     time.Time
}

// CompleteMilestoneCommand marks a milestone as done.
type CompleteMilestoneCommand struct {
	GigID       uuid.UUID
	ActorID     uuid.UUID
	MilestoneID uuid.UUID
}
