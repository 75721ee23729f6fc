package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
)

// UpdateProfileUseCase edits display name and skills. Role and email stay
// as registered.
type UpdateProfileUseCase struct {
	users userdomain.Repository
}

// NewUpdateProfileUseCase creates the use case.
func NewUpdateProfileUseCase(users userdomain.Repository) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{users: users}
}

// Execute applies the profile edits in cmd.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, cmd UpdateProfileCommand) (Result, error) {
	if err := appcore.ValidateUUID("userID", cmd.UserID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	u, err := uc.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, ErrUserNotFound
		}
		return Result{}, fmt.Errorf("failed to find user: %w", err)
	}

	if cmd.DisplayName != nil {
		if renameErr := u.Rename(*cmd.DisplayName); renameErr != nil {
			return Result{}, fmt.Errorf("failed to rename: %w", renameErr)
		}
	}
	if cmd.Skills != nil {
		if skillsErr := u.UpdateSkills(cmd.Skills); skillsErr != nil {
			return Result{}, fmt.Errorf("failed to update skills: %w", skillsErr)
		}
	}

	if saveErr := uc.users.Save(ctx, u); saveErr != nil {
		return Result{}, fmt.Errorf("failed to save user: %w", saveErr)
	}

	return Result{Result: appcore.Result[*userdomain.User]{Value: u}}, nil
}
