package gig

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// GetGigUseCase fetches a single gig.
type GetGigUseCase struct {
	gigs gigdomain.Repository
}

// NewGetGigUseCase creates the use case.
func NewGetGigUseCase(gigs gigdomain.Repository) *GetGigUseCase {
	return &GetGigUseCase{gigs: gigs}
}

// Execute returns the gig with the given ID.
func (uc *GetGigUseCase) Execute(ctx context.Context, gigID uuid.UUID) (Result, error) {
	if err := appcore.ValidateUUID("gigID", gigID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	g, err := uc.gigs.FindByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, ErrGigNotFound
		}
		return Result{}, fmt.Errorf("failed to find gig: %w", err)
	}

	return Result{Result: appcore.Result[*gigdomain.Gig]{Value: g}}, nil
}
