package notification

import (
	"context"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Repository is the persistence contract for notifications.
type Repository interface {
	// FindByID finds a notification by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// ListByUser lists a user's notifications, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]*Notification, error)

	// CountByUser counts a user's notifications, optionally unread only.
	CountByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int, error)

	// ExistsForGigSince reports whether a notification of the given type for
	// the given user and gig was created after t. Used to deduplicate
	// deadline reminders.
	ExistsForGigSince(ctx context.Context, userID, gigID uuid.UUID, typ Type, sinceHours int) (bool, error)

	// Save upserts a notification.
	Save(ctx context.Context, n *Notification) error

	// MarkAllRead marks all unread notifications of a user as read and
	// returns how many were affected.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}
