// Package user contains use cases for marketplace profiles.
package user

import (
	"github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// RegisterUserCommand creates a profile for an authenticated identity.
// The role is fixed at registration.
type RegisterUserCommand struct {
	ExternalID  string
	Email       string
	DisplayName string
	Role        user.Role
}

// UpdateProfileCommand edits the mutable profile fields. Nil fields are
// left unchanged; the role can never be changed.
type UpdateProfileCommand struct {
	UserID      uuid.UUID
	DisplayName *string
	Skills      []string
}
