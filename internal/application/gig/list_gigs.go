package gig

import (
	"context"
	"fmt"

	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
)

// Default pagination bounds for gig listings.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListGigsUseCase lists gigs for the board and the dashboards.
type ListGigsUseCase struct {
	gigs gigdomain.Repository
}

// NewListGigsUseCase creates the use case.
func NewListGigsUseCase(gigs gigdomain.Repository) *ListGigsUseCase {
	return &ListGigsUseCase{gigs: gigs}
}

// Execute lists gigs matching the query, newest first.
func (uc *ListGigsUseCase) Execute(ctx context.Context, query ListGigsQuery) (ListResult, error) {
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

	filter := gigdomain.Filter{
		PosterID:   query.PosterID,
		AssignedTo: query.AssignedTo,
		Status:     query.Status,
		Offset:     offset,
		Limit:      limit,
	}

	gigs, err := uc.gigs.List(ctx, filter)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list gigs: %w", err)
	}

	total, err := uc.gigs.Count(ctx, gigdomain.Filter{
		PosterID:   query.PosterID,
		AssignedTo: query.AssignedTo,
		Status:     query.Status,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to count gigs: %w", err)
	}

	return ListResult{Gigs: gigs, TotalCount: total, Offset: offset, Limit: limit}, nil
}
