// Package notification contains the notification aggregate: a message to a
// user produced as a side effect of a lifecycle transition.
package notification

import (
	"time"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Type tags what kind of lifecycle change produced a notification.
type Type string

const (
	// TypeApplicationAccepted tells a freelancer their application won.
	TypeApplicationAccepted Type = "application_accepted"
	// TypeApplicationRejected tells a freelancer their application lost.
	TypeApplicationRejected Type = "application_rejected"
	// TypeApplicationReceived tells a poster a new application arrived.
	TypeApplicationReceived Type = "application_received"
	// TypeGigAssigned tells a freelancer they were assigned a gig.
	TypeGigAssigned Type = "gig_assigned"
	// TypeGigStatusChanged tells the counterpart a gig moved lifecycle state.
	TypeGigStatusChanged Type = "gig_status_changed"
	// TypeMilestoneCompleted tells a poster a milestone was completed.
	TypeMilestoneCompleted Type = "milestone_completed"
	// TypeDeadlineApproaching warns poster and assignee about a near deadline.
	TypeDeadlineApproaching Type = "deadline_approaching"
	// TypeSystem is a platform announcement.
	TypeSystem Type = "system"
)

// ValidType reports whether t is a known notification type.
func ValidType(t Type) bool {
	switch t {
	case TypeApplicationAccepted, TypeApplicationRejected, TypeApplicationReceived,
		TypeGigAssigned, TypeGigStatusChanged, TypeMilestoneCompleted,
		TypeDeadlineApproaching, TypeSystem:
		return true
	default:
		return false
	}
}

// Notification is a message for a user. Immutable except for the read flag.
type Notification struct {
	id           uuid.UUID
	userID       uuid.UUID
	typ          Type
	title        string
	message      string
	relatedGigID uuid.UUID
	readAt       *time.Time
	createdAt    time.Time
}

// NewNotification creates an unread notification.
func NewNotification(userID uuid.UUID, typ Type, title, message string, relatedGigID uuid.UUID) (*Notification, error) {
	if userID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	if !ValidType(typ) {
		return nil, errs.ErrInvalidInput
	}
	if title == "" || message == "" {
		return nil, errs.ErrInvalidInput
	}

	return &Notification{
		id:           uuid.NewUUID(),
		userID:       userID,
		typ:          typ,
		title:        title,
		message:      message,
		relatedGigID: relatedGigID,
		createdAt:    time.Now(),
	}, nil
}

// Reconstruct rebuilds a notification from storage without validation.
func Reconstruct(
	id, userID uuid.UUID,
	typ Type,
	title, message string,
	relatedGigID uuid.UUID,
	readAt *time.Time,
	createdAt time.Time,
) *Notification {
	return &Notification{
		id:           id,
		userID:       userID,
		typ:          typ,
		title:        title,
		message:      message,
		relatedGigID: relatedGigID,
		readAt:       readAt,
		createdAt:    createdAt,
	}
}

// MarkAsRead sets the read timestamp. Reading twice is an invalid state.
func (n *Notification) MarkAsRead() error {
	if n.readAt != nil {
		return errs.ErrInvalidState
	}
	now := time.Now()
	n.readAt = &now
	return nil
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.readAt != nil
}

// ID returns the notification ID.
func (n *Notification) ID() uuid.UUID { return n.id }

// UserID returns the recipient's user ID.
func (n *Notification) UserID() uuid.UUID { return n.userID }

// Type returns the notification type.
func (n *Notification) Type() Type { return n.typ }

// Title returns the title.
func (n *Notification) Title() string { return n.title }

// Message returns the message text.
func (n *Notification) Message() string { return n.message }

// RelatedGigID returns the gig the notification refers to, if any.
func (n *Notification) RelatedGigID() uuid.UUID { return n.relatedGigID }

// ReadAt returns the read time, if read.
func (n *Notification) ReadAt() *time.Time { return n.readAt }

// CreatedAt returns the creation time.
func (n *Notification) CreatedAt() time.Time { return n.createdAt }
