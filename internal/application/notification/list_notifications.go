// Package notification contains the inbox use cases: listing, unread counts
// and read marks.
package notification

import (
	"context"
	"fmt"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Pagination bounds for the inbox.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListQuery pages through a user's inbox.
type ListQuery struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Offset     int
	Limit      int
}

// ListResult is a page of notifications plus the user's unread count.
type ListResult struct {
	Notifications []*notifdomain.Notification
	UnreadCount   int
	Offset        int
	Limit         int
}

// ListNotificationsUseCase pages through a user's inbox, newest first.
type ListNotificationsUseCase struct {
	notifs notifdomain.Repository
}

// NewListNotificationsUseCase creates the use case.
func NewListNotificationsUseCase(notifs notifdomain.Repository) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{notifs: notifs}
}

// Execute lists the inbox page described by query.
func (uc *ListNotificationsUseCase) Execute(ctx context.Context, query ListQuery) (ListResult, error) {
	if err := appcore.ValidateUUID("userID", query.UserID); err != nil {
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

	notifs, err := uc.notifs.ListByUser(ctx, query.UserID, query.UnreadOnly, offset, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := uc.notifs.CountByUser(ctx, query.UserID, true)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return ListResult{Notifications: notifs, UnreadCount: unread, Offset: offset, Limit: limit}, nil
}

// UnreadCountUseCase returns how many unread notifications a user has.
type UnreadCountUseCase struct {
	notifs notifdomain.Repository
}

// NewUnreadCountUseCase creates the use case.
func NewUnreadCountUseCase(notifs notifdomain.Repository) *UnreadCountUseCase {
	return &UnreadCountUseCase{notifs: notifs}
}

// Execute counts the user's unread notifications.
func (uc *UnreadCountUseCase) Execute(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := appcore.ValidateUUID("userID", userID); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	count, err := uc.notifs.CountByUser(ctx, userID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
