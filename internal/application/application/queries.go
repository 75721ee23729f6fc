package application

import (
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// ListByGigQuery lists a gig's applications for its poster.
type ListByGigQuery struct {
	GigID   uuid.UUID
	ActorID uuid.UUID
}

// ListByApplicantQuery lists a freelancer's own applications.
type ListByApplicantQuery struct {
	ApplicantID uuid.UUID
	Offset      int
	Limit       int
}
