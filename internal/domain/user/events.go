package user

import (
	"github.com/lllypuk/gigwork/internal/domain/event"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Event types emitted by the user aggregate.
const (
	EventTypeRegistered = "user.registered"
)

// AggregateType identifies user events on the bus.
const AggregateType = "User"

// Registered is emitted when a profile is created.
type Registered struct {
	event.BaseEvent

	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

// NewRegistered creates a Registered event.
func NewRegistered(userID uuid.UUID, email string, role Role, metadata event.Metadata) *Registered {
	return &Registered{
		BaseEvent: event.NewBaseEvent(EventTypeRegistered, userID.String(), AggregateType, 1, metadata),
		UserID:    userID,
		Email:     email,
		Role:      role,
	}
}
