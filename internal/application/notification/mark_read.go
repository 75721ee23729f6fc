package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Inbox errors.
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("actor is not the notification recipient")
)

// MarkReadCommand marks one notification as read.
type MarkReadCommand struct {
	NotificationID uuid.UUID
	ActorID        uuid.UUID
}

// MarkReadUseCase marks a single notification as read. Marking an already
// read notification is a no-op.
type MarkReadUseCase struct {
	notifs notifdomain.Repository
}

// NewMarkReadUseCase creates the use case.
func NewMarkReadUseCase(notifs notifdomain.Repository) *MarkReadUseCase {
	return &MarkReadUseCase{notifs: notifs}
}

// Execute marks the notification in cmd as read.
func (uc *MarkReadUseCase) Execute(ctx context.Context, cmd MarkReadCommand) (*notifdomain.Notification, error) {
	if err := appcore.ValidateUUID("notificationID", cmd.NotificationID); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := appcore.ValidateUUID("actorID", cmd.ActorID); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	n, err := uc.notifs.FindByID(ctx, cmd.NotificationID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	if n.UserID() != cmd.ActorID {
		return nil, ErrNotRecipient
	}
	if n.IsRead() {
		return n, nil
	}

	if markErr := n.MarkAsRead(); markErr != nil {
		return nil, markErr
	}
	if saveErr := uc.notifs.Save(ctx, n); saveErr != nil {
		return nil, fmt.Errorf("failed to save notification: %w", saveErr)
	}
	return n, nil
}

// MarkAllReadUseCase marks every unread notification of a user as read.
type MarkAllReadUseCase struct {
	notifs notifdomain.Repository
}

// NewMarkAllReadUseCase creates the use case.
func NewMarkAllReadUseCase(notifs notifdomain.Repository) *MarkAllReadUseCase {
	return &MarkAllReadUseCase{notifs: notifs}
}

// Execute marks the user's unread notifications as read and returns how many
// were affected.
func (uc *MarkAllReadUseCase) Execute(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := appcore.ValidateUUID("userID", userID); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	count, err := uc.notifs.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}
