// Package application contains use cases for submitting and resolving gig
// applications, including the transactional accept workflow.
package application

import (
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// SubmitApplicationCommand is a freelancer's bid on an open gig.
type SubmitApplicationCommand struct {
	GigID       uuid.UUID
	ApplicantID uuid.UUID
	CoverLetter string
}

// AcceptApplicationCommand accepts one application on behalf of the poster.
type AcceptApplicationCommand struct {
	ApplicationID uuid.UUID
	ActorID       uuid.UUID
}

// RejectApplicationCommand rejects one application on behalf of the poster.
type RejectApplicationCommand struct {
	ApplicationID uuid.UUID
	ActorID       uuid.UUID
}
