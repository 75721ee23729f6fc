package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// GetUserUseCase fetches a profile by ID.
type GetUserUseCase struct {
	users userdomain.Repository
}

// NewGetUserUseCase creates the use case.
func NewGetUserUseCase(users userdomain.Repository) *GetUserUseCase {
	return &GetUserUseCase{users: users}
}

// Execute returns the profile with the given ID.
func (uc *GetUserUseCase) Execute(ctx context.Context, userID uuid.UUID) (Result, error) {
	if err := appcore.ValidateUUID("userID", userID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	u, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, ErrUserNotFound
		}
		return Result{}, fmt.Errorf("failed to find user: %w", err)
	}

	return Result{Result: appcore.Result[*userdomain.User]{Value: u}}, nil
}

// ResolveByExternalID finds a profile by its identity-provider subject.
// Used by the auth middleware to join the token to a profile.
func (uc *GetUserUseCase) ResolveByExternalID(ctx context.Context, externalID string) (*userdomain.User, error) {
	if externalID == "" {
		return nil, errs.ErrInvalidInput
	}

	u, err := uc.users.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if !u.IsActive() {
		return nil, ErrUserInactive
	}
	return u, nil
}
