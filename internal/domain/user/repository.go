package user

import (
	"context"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Repository is the persistence contract for user profiles.
type Repository interface {
	// FindByID finds a profile by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByExternalID finds a profile by its identity-provider subject.
	FindByExternalID(ctx context.Context, externalID string) (*User, error)

	// FindByEmail finds a profile by email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ListByRole lists profiles with the given role.
	ListByRole(ctx context.Context, role Role, offset, limit int) ([]*User, error)

	// Save upserts a profile.
	Save(ctx context.Context, u *User) error
}
