package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// UserRepository is an in-memory user.Repository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*user.User

	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]*user.User)}
}

// FindByID implements user.Repository.
func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

// FindByExternalID implements user.Repository.
func (r *UserRepository) FindByExternalID(_ context.Context, externalID string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ExternalID() == externalID {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

// FindByEmail implements user.Repository.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

// ListByRole implements user.Repository.
func (r *UserRepository) ListByRole(_ context.Context, role user.Role, offset, limit int) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*user.User
	for _, u := range r.users {
		if u.Role() == role {
			out = append(out, u)
		}
	}
	return paginate(out, offset, limit), nil
}

// Save implements user.Repository.
func (r *UserRepository) Save(_ context.Context, u *user.User) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func paginate[T any](in []T, offset, limit int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
