package gig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
)

// AddMilestoneUseCase appends a milestone to a gig. Poster only.
type AddMilestoneUseCase struct {
	gigs   gigdomain.Repository
	logger *slog.Logger
}

// NewAddMilestoneUseCase creates the use case.
func NewAddMilestoneUseCase(gigs gigdomain.Repository, logger *slog.Logger) *AddMilestoneUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddMilestoneUseCase{gigs: gigs, logger: logger}
}

// Execute appends the milestone described by cmd.
func (uc *AddMilestoneUseCase) Execute(ctx context.Context, cmd AddMilestoneCommand) (Result, error) {
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
	if !g.IsPostedBy(cmd.ActorID) {
		return Result{}, ErrNotGigPoster
	}

	if _, addErr := g.AddMilestone(cmd.Title, cmd.Description, cmd.DueDate); addErr != nil {
		return Result{}, addErr
	}
	if saveErr := uc.gigs.Save(ctx, g); saveErr != nil {
		return Result{}, fmt.Errorf("failed to save gig: %w", saveErr)
	}

	return Result{Result: appcore.Result[*gigdomain.Gig]{Value: g}}, nil
}

func (uc *AddMilestoneUseCase) validate(cmd AddMilestoneCommand) error {
	if err := appcore.ValidateUUID("gigID", cmd.GigID); err != nil {
		return err
	}
	if err := appcore.ValidateUUID("actorID", cmd.ActorID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("title", cmd.Title); err != nil {
		return err
	}
	return appcore.ValidateMaxLength("title", cmd.Title, 200)
}

// CompleteMilestoneUseCase marks a milestone done and notifies the other
// party. Poster or assignee may complete.
type CompleteMilestoneUseCase struct {
	gigs   gigdomain.Repository
	notifs notifdomain.Repository
	logger *slog.Logger
}

// NewCompleteMilestoneUseCase creates the use case.
func NewCompleteMilestoneUseCase(
	gigs gigdomain.Repository,
	notifs notifdomain.Repository,
	logger *slog.Logger,
) *CompleteMilestoneUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompleteMilestoneUseCase{gigs: gigs, notifs: notifs, logger: logger}
}

// Execute completes the milestone identified by cmd.
func (uc *CompleteMilestoneUseCase) Execute(ctx context.Context, cmd CompleteMilestoneCommand) (Result, error) {
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

	isPoster := g.IsPostedBy(cmd.ActorID)
	isAssignee := g.AssignedTo() != nil && *g.AssignedTo() == cmd.ActorID
	if !isPoster && !isAssignee {
		return Result{}, ErrNotGigPoster
	}

	if completeErr := g.CompleteMilestone(cmd.MilestoneID); completeErr != nil {
		return Result{}, completeErr
	}
	if saveErr := uc.gigs.Save(ctx, g); saveErr != nil {
		return Result{}, fmt.Errorf("failed to save gig: %w", saveErr)
	}

	uc.notifyCounterparty(ctx, g, isPoster)

	return Result{Result: appcore.Result[*gigdomain.Gig]{Value: g}}, nil
}

// notifyCounterparty tells the other side of the gig that a milestone closed.
// Best effort: the milestone itself is already saved.
func (uc *CompleteMilestoneUseCase) notifyCounterparty(ctx context.Context, g *gigdomain.Gig, actorIsPoster bool) {
	var recipient = g.PosterID()
	if actorIsPoster {
		if g.AssignedTo() == nil {
			return
		}
		recipient = *g.AssignedTo()
	}

	notif, err := notifdomain.NewNotification(
		recipient,
		notifdomain.TypeMilestoneCompleted,
		"Milestone completed",
		fmt.Sprintf("A milestone on %q was marked as completed", g.Title()),
		g.ID(),
	)
	if err == nil {
		err = uc.notifs.Save(ctx, notif)
	}
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to notify about milestone completion",
			slog.String("gig_id", g.ID().String()),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *CompleteMilestoneUseCase) validate(cmd CompleteMilestoneCommand) error {
	if err := appcore.ValidateUUID("gigID", cmd.GigID); err != nil {
		return err
	}
	if err := appcore.ValidateUUID("actorID", cmd.ActorID); err != nil {
		return err
	}
	return appcore.ValidateUUID("milestoneID", cmd.MilestoneID)
}
