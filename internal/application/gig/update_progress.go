package gig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
)

// UpdateProgressUseCase lets the assigned freelancer report progress.
type UpdateProgressUseCase struct {
	gigs   gigdomain.Repository
	logger *slog.Logger
}

// NewUpdateProgressUseCase creates the use case.
func NewUpdateProgressUseCase(gigs gigdomain.Repository, logger *slog.Logger) *UpdateProgressUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateProgressUseCase{gigs: gigs, logger: logger}
}

// Execute sets the progress percentage on the gig in cmd.
func (uc *UpdateProgressUseCase) Execute(ctx context.Context, cmd UpdateProgressCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	g, err := uc.gigs.FindByID(ctx, cmd.GigID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, ErrGigNotFound
		}
		return Result{}, fmt.Errorf("failed to find gig: %w", err)
	}
	if g.AssignedTo() == nil || *g.AssignedTo() != cmd.ActorID {
		return Result{}, ErrNotGigAssignee
	}

	if updateErr := g.UpdateProgress(cmd.Progress); updateErr != nil {
		return Result{}, updateErr
	}
	if saveErr := uc.gigs.Save(ctx, g); saveErr != nil {
		return Result{}, fmt.Errorf("failed to save gig: %w", saveErr)
	}

	uc.logger.InfoContext(ctx, "gig progress updated",
		slog.String("gig_id", g.ID().String()),
		slog.Int("progress", cmd.Progress),
	)

	return Result{Result: appcore.Result[*gigdomain.Gig]{Value: g}}, nil
}

func (uc *UpdateProgressUseCase) validate(cmd UpdateProgressCommand) error {
	if err := appcore.ValidateUUID("gigID", cmd.GigID); err != nil {
		return err
	}
	if err := appcore.ValidateUUID("actorID", cmd.ActorID); err != nil {
		return err
	}
	return appcore.ValidateRange("progress", cmd.Progress, 0, 100)
}
