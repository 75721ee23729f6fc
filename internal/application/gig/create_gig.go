package gig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/event"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
)

// CreateGigUseCase posts a gig. Every creation-time invariant (positive
// budget, future deadline, at least one skill) fails here before any write.
type CreateGigUseCase struct {
	gigs   gigdomain.Repository
	users  userdomain.Repository
	bus    event.Bus
	logger *slog.Logger
}

// NewCreateGigUseCase creates the use case.
func NewCreateGigUseCase(
	gigs gigdomain.Repository,
	users userdomain.Repository,
	bus event.Bus,
	logger *slog.Logger,
) *CreateGigUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateGigUseCase{gigs: gigs, users: users, bus: bus, logger: logger}
}

// Execute posts the gig described by cmd.
func (uc *CreateGigUseCase) Execute(ctx context.Context, cmd CreateGigCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	poster, err := uc.users.FindByID(ctx, cmd.PosterID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, appcore.ErrUserNotFound
		}
		return Result{}, fmt.Errorf("failed to find poster: %w", err)
	}
	if !poster.IsClient() {
		return Result{}, ErrNotAClient
	}

	g, err := gigdomain.NewGig(cmd.PosterID, cmd.Title, cmd.Description,
		cmd.Priority, cmd.Budget, cmd.Deadline, cmd.Skills)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create gig: %w", err)
	}

	if saveErr := uc.gigs.Save(ctx, g); saveErr != nil {
		return Result{}, fmt.Errorf("failed to save gig: %w", saveErr)
	}

	uc.publishCreated(ctx, g)

	return Result{Result: appcore.Result[*gigdomain.Gig]{Value: g}}, nil
}

func (uc *CreateGigUseCase) publishCreated(ctx context.Context, g *gigdomain.Gig) {
	if uc.bus == nil {
		return
	}
	evt := gigdomain.NewCreated(g.ID(), g.PosterID(), g.Title(),
		event.NewMetadata(g.PosterID().String(), "", ""))
	if err := uc.bus.Publish(ctx, evt); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish gig.created",
			slog.String("gig_id", g.ID().String()),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *CreateGigUseCase) validate(cmd CreateGigCommand) error {
	if err := appcore.ValidateUUID("posterID", cmd.PosterID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("title", cmd.Title); err != nil {
		return err
	}
	if err := appcore.ValidateMaxLength("title", cmd.Title, appcore.MaxTitleLength); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("description", cmd.Description); err != nil {
		return err
	}
	if err := appcore.ValidateEnum("priority", string(cmd.Priority), []string{
		string(gigdomain.PriorityLow),
		string(gigdomain.PriorityMedium),
		string(gigdomain.PriorityHigh),
	}); err != nil {
		return err
	}
	if err := appcore.ValidatePositiveAmount("budget", cmd.Budget); err != nil {
		return err
	}
	if err := appcore.ValidateFutureDate("deadline", cmd.Deadline); err != nil {
		return err
	}
	return appcore.ValidateNonEmptySlice("skills", cmd.Skills)
}
