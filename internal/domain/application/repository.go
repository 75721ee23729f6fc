package application

import (
	"context"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Repository is the persistence contract for gig applications.
type Repository interface {
	// FindByID finds an application by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Application, error)

	// ListByGig lists all applications for a gig, newest first.
	ListByGig(ctx context.Context, gigID uuid.UUID) ([]*Application, error)

	// ListByApplicant lists a freelancer's applications, newest first.
	ListByApplicant(ctx context.Context, applicantID uuid.UUID, offset, limit int) ([]*Application, error)

	// ListPendingByGig lists the still-pending applications for a gig.
	ListPendingByGig(ctx context.Context, gigID uuid.UUID) ([]*Application, error)

	// CountByGigAndApplicant counts applications a freelancer has already
	// submitted for a gig. Used to log duplicate submissions.
	CountByGigAndApplicant(ctx context.Context, gigID, applicantID uuid.UUID) (int, error)

	// Save upserts an application.
	Save(ctx context.Context, a *Application) error
}
