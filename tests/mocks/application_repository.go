package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/application"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// ApplicationRepository is an in-memory application.Repository.
type ApplicationRepository struct {
	mu   sync.RWMutex
	apps map[uuid.UUID]*application.Application

	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewApplicationRepository creates an empty repository.
func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{apps: make(map[uuid.UUID]*application.Application)}
}

// FindByID implements application.Repository.
func (r *ApplicationRepository) FindByID(_ context.Context, id uuid.UUID) (*application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneApplication(a), nil
}

// ListByGig implements application.Repository.
func (r *ApplicationRepository) ListByGig(_ context.Context, gigID uuid.UUID) ([]*application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*application.Application
	for _, a := range r.apps {
		if a.GigID() == gigID {
			out = append(out, cloneApplication(a))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListByApplicant implements application.Repository.
func (r *ApplicationRepository) ListByApplicant(
	_ context.Context,
	applicantID uuid.UUID,
	offset, limit int,
) ([]*application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*application.Application
	for _, a := range r.apps {
		if a.ApplicantID() == applicantID {
			out = append(out, cloneApplication(a))
		}
	}
	sortNewestFirst(out)
	return paginate(out, offset, limit), nil
}

// ListPendingByGig implements application.Repository.
func (r *ApplicationRepository) ListPendingByGig(_ context.Context, gigID uuid.UUID) ([]*application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*application.Application
	for _, a := range r.apps {
		if a.GigID() == gigID && a.IsPending() {
			out = append(out, cloneApplication(a))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// CountByGigAndApplicant implements application.Repository.
func (r *ApplicationRepository) CountByGigAndApplicant(_ context.Context, gigID, applicantID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, a := range r.apps {
		if a.GigID() == gigID && a.ApplicantID() == applicantID {
			count++
		}
	}
	return count, nil
}

// Save implements application.Repository.
func (r *ApplicationRepository) Save(_ context.Context, a *application.Application) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[a.ID()] = cloneApplication(a)
	return nil
}

func sortNewestFirst(apps []*application.Application) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt().After(apps[j].CreatedAt()) })
}

// cloneApplication detaches the stored document from the caller's aggregate.
func cloneApplication(a *application.Application) *application.Application {
	var updatedAt *time.Time
	if a.UpdatedAt() != nil {
		t := *a.UpdatedAt()
		updatedAt = &t
	}
	return application.Reconstruct(
		a.ID(), a.GigID(), a.ApplicantID(), a.CoverLetter(), a.Status(),
		a.CreatedAt(), updatedAt,
	)
}
