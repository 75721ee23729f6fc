package notification

import (
	"github.com/lllypuk/gigwork/internal/domain/event"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// EventTypeCreated is published after a notification is committed so the
// websocket layer can push it to the recipient.
const EventTypeCreated = "notification.created"

// AggregateType identifies notification events on the bus.
const AggregateType = "Notification"

// Created is emitted when a notification is stored.
type Created struct {
	event.BaseEvent

	NotificationID uuid.UUID `json:"notification_id"`
	UserID         uuid.UUID `json:"user_id"`
	NotifType      Type      `json:"notif_type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	RelatedGigID   uuid.UUID `json:"related_gig_id,omitempty"`
}

// NewCreated creates a Created event.
func NewCreated(n *Notification, metadata event.Metadata) *Created {
	return &Created{
		BaseEvent:      event.NewBaseEvent(EventTypeCreated, n.ID().String(), AggregateType, 1, metadata),
		NotificationID: n.ID(),
		UserID:         n.UserID(),
		NotifType:      n.Type(),
		Title:          n.Title(),
		Message:        n.Message(),
		RelatedGigID:   n.RelatedGigID(),
	}
}
