package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/event"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
)

// RegisterUserUseCase creates a profile on first authenticated contact.
type RegisterUserUseCase struct {
	users  userdomain.Repository
	bus    event.Bus
	logger *slog.Logger
}

// NewRegisterUserUseCase creates the use case.
func NewRegisterUserUseCase(users userdomain.Repository, bus event.Bus, logger *slog.Logger) *RegisterUserUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterUserUseCase{users: users, bus: bus, logger: logger}
}

// Execute registers a profile for the identity in cmd.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, cmd RegisterUserCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := uc.users.FindByExternalID(ctx, cmd.ExternalID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return Result{}, fmt.Errorf("failed to look up identity: %w", err)
	}
	if existing != nil {
		return Result{}, ErrUserAlreadyExists
	}

	u, err := userdomain.NewUser(cmd.ExternalID, cmd.Email, cmd.DisplayName, cmd.Role)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create user: %w", err)
	}

	if saveErr := uc.users.Save(ctx, u); saveErr != nil {
		return Result{}, fmt.Errorf("failed to save user: %w", saveErr)
	}

	uc.publishRegistered(ctx, u)

	return Result{Result: appcore.Result[*userdomain.User]{Value: u}}, nil
}

func (uc *RegisterUserUseCase) publishRegistered(ctx context.Context, u *userdomain.User) {
	if uc.bus == nil {
		return
	}
	evt := userdomain.NewRegistered(u.ID(), u.Email(), u.Role(),
		event.NewMetadata(u.ID().String(), "", ""))
	if err := uc.bus.Publish(ctx, evt); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish user.registered",
			slog.String("user_id", u.ID().String()),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *RegisterUserUseCase) validate(cmd RegisterUserCommand) error {
	if err := appcore.ValidateRequired("externalID", cmd.ExternalID); err != nil {
		return err
	}
	if err := appcore.ValidateEmail("email", cmd.Email); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("displayName", cmd.DisplayName); err != nil {
		return err
	}
	return appcore.ValidateEnum("role", string(cmd.Role), []string{
		string(userdomain.RoleAdmin),
		string(userdomain.RoleClient),
		string(userdomain.RoleFreelancer),
	})
}
