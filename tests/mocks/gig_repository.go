package mocks

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// GigRepository is an in-memory gig.Repository with the same SaveIfOpen
// guard semantics as the MongoDB implementation.
type GigRepository struct {
	mu   sync.RWMutex
	gigs map[uuid.UUID]*gig.Gig
	// stored status snapshot, used by the SaveIfOpen guard
	statuses map[uuid.UUID]gig.Status

	// SaveErr, when set, is returned by Save and SaveIfOpen.
	SaveErr error
}

// NewGigRepository creates an empty repository.
func NewGigRepository() *GigRepository {
	return &GigRepository{
		gigs:     make(map[uuid.UUID]*gig.Gig),
		statuses: make(map[uuid.UUID]gig.Status),
	}
}

// FindByID implements gig.Repository.
func (r *GigRepository) FindByID(_ context.Context, id uuid.UUID) (*gig.Gig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gigs[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneGig(g), nil
}

// List implements gig.Repository.
func (r *GigRepository) List(_ context.Context, filter gig.Filter) ([]*gig.Gig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.match(filter)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return paginate(out, filter.Offset, filter.Limit), nil
}

// Count implements gig.Repository.
func (r *GigRepository) Count(_ context.Context, filter gig.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.match(filter)), nil
}

// ListDueBefore implements gig.Repository.
func (r *GigRepository) ListDueBefore(_ context.Context, t time.Time, limit int) ([]*gig.Gig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*gig.Gig
	for _, g := range r.gigs {
		if g.Status() != gig.StatusCompleted && g.Deadline().Before(t) {
			out = append(out, g)
		}
	}
	return paginate(out, 0, limit), nil
}

// Save implements gig.Repository.
func (r *GigRepository) Save(_ context.Context, g *gig.Gig) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gigs[g.ID()] = cloneGig(g)
	r.statuses[g.ID()] = g.Status()
	return nil
}

// SaveIfOpen implements gig.Repository: the write succeeds only when the
// stored document is still open.
func (r *GigRepository) SaveIfOpen(_ context.Context, g *gig.Gig) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.statuses[g.ID()]; !ok || stored != gig.StatusOpen {
		return errs.ErrConcurrentModification
	}
	r.gigs[g.ID()] = cloneGig(g)
	r.statuses[g.ID()] = g.Status()
	return nil
}

func (r *GigRepository) match(filter gig.Filter) []*gig.Gig {
	var out []*gig.Gig
	for _, g := range r.gigs {
		if !filter.PosterID.IsZero() && g.PosterID() != filter.PosterID {
			continue
		}
		if !filter.AssignedTo.IsZero() && (g.AssignedTo() == nil || *g.AssignedTo() != filter.AssignedTo) {
			continue
		}
		if filter.Status != "" && g.Status() != filter.Status {
			continue
		}
		out = append(out, g)
	}
	return out
}

// cloneGig detaches the stored document from the caller's aggregate, the way
// a real round trip through storage would.
func cloneGig(g *gig.Gig) *gig.Gig {
	var assigned *uuid.UUID
	if g.AssignedTo() != nil {
		id := *g.AssignedTo()
		assigned = &id
	}
	return gig.Reconstruct(
		g.ID(), g.Title(), g.Description(), g.Status(), g.Priority(),
		g.PosterID(), assigned, g.Budget(), g.Deadline(),
		slices.Clone(g.Skills()), g.Progress(), slices.Clone(g.Milestones()),
		g.CreatedAt(), g.UpdatedAt(),
	)
}
