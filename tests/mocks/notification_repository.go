package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// NotificationRepository is an in-memory notification.Repository.
type NotificationRepository struct {
	mu     sync.RWMutex
	notifs map[uuid.UUID]*notification.Notification

	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewNotificationRepository creates an empty repository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifs: make(map[uuid.UUID]*notification.Notification)}
}

// FindByID implements notification.Repository.
func (r *NotificationRepository) FindByID(_ context.Context, id uuid.UUID) (*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifs[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return n, nil
}

// ListByUser implements notification.Repository.
func (r *NotificationRepository) ListByUser(
	_ context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	offset, limit int,
) ([]*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.matchUser(userID, unreadOnly)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return paginate(out, offset, limit), nil
}

// CountByUser implements notification.Repository.
func (r *NotificationRepository) CountByUser(_ context.Context, userID uuid.UUID, unreadOnly bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchUser(userID, unreadOnly)), nil
}

// ExistsForGigSince implements notification.Repository.
func (r *NotificationRepository) ExistsForGigSince(
	_ context.Context,
	userID, gigID uuid.UUID,
	typ notification.Type,
	sinceHours int,
) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := time.Now().Add(-time.Duration(sinceHours) * time.Hour)
	for _, n := range r.notifs {
		if n.UserID() == userID && n.RelatedGigID() == gigID && n.Type() == typ && n.CreatedAt().After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

// Save implements notification.Repository.
func (r *NotificationRepository) Save(_ context.Context, n *notification.Notification) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifs[n.ID()] = n
	return nil
}

// MarkAllRead implements notification.Repository.
func (r *NotificationRepository) MarkAllRead(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifs {
		if n.UserID() == userID && !n.IsRead() {
			_ = n.MarkAsRead()
			count++
		}
	}
	return count, nil
}

// ForUser returns all stored notifications for a user, unsorted.
func (r *NotificationRepository) ForUser(userID uuid.UUID) []*notification.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matchUser(userID, false)
}

func (r *NotificationRepository) matchUser(userID uuid.UUID, unreadOnly bool) []*notification.Notification {
	var out []*notification.Notification
	for _, n := range r.notifs {
		if n.UserID() != userID {
			continue
		}
		if unreadOnly && n.IsRead() {
			continue
		}
		out = append(out, n)
	}
	return out
}
