package gig

import (
	"context"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Filter narrows gig listings. Zero values mean "no constraint".
type Filter struct {
	PosterID   uuid.UUID
	AssignedTo uuid.UUID
	Status     Status
	Offset     int
	Limit      int
}

// Repository is the persistence contract for gigs.
type Repository interface {
	// FindByID finds a gig by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Gig, error)

	// List lists gigs matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*Gig, error)

	// Count counts gigs matching the filter.
	Count(ctx context.Context, filter Filter) (int, error)

	// ListDueBefore lists gigs that are not completed and are due before t.
	ListDueBefore(ctx context.Context, t time.Time, limit int) ([]*Gig, error)

	// Save upserts a gig unconditionally.
	Save(ctx context.Context, g *Gig) error

	// SaveIfOpen persists the gig only if the stored document is still open.
	// Returns errs.ErrConcurrentModification when the guard fails, which is
	// how the first accepted application wins an accept race.
	SaveIfOpen(ctx context.Context, g *Gig) error
}
