package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
)

// Pagination bounds for application listings.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListByGigUseCase lists a gig's applications for its poster.
type ListByGigUseCase struct {
	applications appdomain.Repository
	gigs         gigdomain.Repository
}

// NewListByGigUseCase creates the use case.
func NewListByGigUseCase(applications appdomain.Repository, gigs gigdomain.Repository) *ListByGigUseCase {
	return &ListByGigUseCase{applications: applications, gigs: gigs}
}

// Execute lists the applications on the queried gig, newest first. Only the
// poster may see them.
func (uc *ListByGigUseCase) Execute(ctx context.Context, query ListByGigQuery) (ListResult, error) {
	if err := appcore.ValidateUUID("gigID", query.GigID); err != nil {
		return ListResult{}, fmt.Errorf("validation failed: %w", err)
	}
	if err := appcore.ValidateUUID("actorID", query.ActorID); err != nil {
		return ListResult{}, fmt.Errorf("validation failed: %w", err)
	}

	g, err := uc.gigs.FindByID(ctx, query.GigID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ListResult{}, ErrGigNotFound
		}
		return ListResult{}, fmt.Errorf("failed to find gig: %w", err)
	}
	if !g.IsPostedBy(query.ActorID) {
		return ListResult{}, ErrNotGigPoster
	}

	apps, err := uc.applications.ListByGig(ctx, query.GigID)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list applications: %w", err)
	}
	return ListResult{Applications: apps}, nil
}

// ListByApplicantUseCase lists a freelancer's own applications.
type ListByApplicantUseCase struct {
	applications appdomain.Repository
}

// NewListByApplicantUseCase creates the use case.
func NewListByApplicantUseCase(applications appdomain.Repository) *ListByApplicantUseCase {
	return &ListByApplicantUseCase{applications: applications}
}

// Execute lists the applicant's applications, newest first.
func (uc *ListByApplicantUseCase) Execute(ctx context.Context, query ListByApplicantQuery) (ListResult, error) {
	if err := appcore.ValidateUUID("applicantID", query.ApplicantID); err != nil {
		return ListResult{}, fmt.Errorf("validation failed: %w", err)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	apps, err := uc.applications.ListByApplicant(ctx, query.ApplicantID, offset, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list applications: %w", err)
	}
	return ListResult{Applications: apps, Offset: offset, Limit: limit}, nil
}
