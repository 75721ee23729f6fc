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
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// ChangeStatusUseCase advances a gig one lifecycle step on behalf of its
// poster. The gig write, the assignee's notification and (on completion)
// the assignee's completed-gig counter commit in one transaction.
type ChangeStatusUseCase struct {
	gigs      gigdomain.Repository
	users     userdomain.Repository
	notifs    notifdomain.Repository
	tx        appcore.TxRunner
	bus       event.Bus
	summaries SummaryInvalidator
	logger    *slog.Logger
}

// NewChangeStatusUseCase creates the use case.
func NewChangeStatusUseCase(
	gigs gigdomain.Repository,
	users userdomain.Repository,
	notifs notifdomain.Repository,
	tx appcore.TxRunner,
	bus event.Bus,
	summaries SummaryInvalidator,
	logger *slog.Logger,
) *ChangeStatusUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeStatusUseCase{
		gigs: gigs, users: users, notifs: notifs,
		tx: tx, bus: bus, summaries: summaries, logger: logger,
	}
}

// Execute performs the transition in cmd.
func (uc *ChangeStatusUseCase) Execute(ctx context.Context, cmd ChangeStatusCommand) (Result, error) {
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

	oldStatus := g.Status()
	if changeErr := g.ChangeStatus(cmd.NewStatus); changeErr != nil {
		return Result{}, changeErr
	}
	if oldStatus == g.Status() {
		// No-op transition, nothing to write.
		return Result{Result: appcore.Result[*gigdomain.Gig]{Value: g}}, nil
	}

	notif, err := uc.buildStatusNotification(g, oldStatus)
	if err != nil {
		return Result{}, err
	}

	txErr := uc.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if saveErr := uc.gigs.Save(txCtx, g); saveErr != nil {
			return fmt.Errorf("failed to save gig: %w", saveErr)
		}
		if notif != nil {
			if saveErr := uc.notifs.Save(txCtx, notif); saveErr != nil {
				return fmt.Errorf("failed to save notification: %w", saveErr)
			}
		}
		if g.Status() == gigdomain.StatusCompleted {
			if creditErr := uc.creditAssignee(txCtx, g); creditErr != nil {
				return creditErr
			}
		}
		return nil
	})
	if txErr != nil {
		return Result{}, txErr
	}

	uc.afterCommit(ctx, g, oldStatus, notif)

	return Result{Result: appcore.Result[*gigdomain.Gig]{Value: g}}, nil
}

// creditAssignee bumps the freelancer's completed-gig counter.
func (uc *ChangeStatusUseCase) creditAssignee(ctx context.Context, g *gigdomain.Gig) error {
	assignee, err := uc.users.FindByID(ctx, *g.AssignedTo())
	if err != nil {
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	assignee.RecordGigCompletion()
	if saveErr := uc.users.Save(ctx, assignee); saveErr != nil {
		return fmt.Errorf("failed to save assignee: %w", saveErr)
	}
	return nil
}

func (uc *ChangeStatusUseCase) buildStatusNotification(
	g *gigdomain.Gig,
	oldStatus gigdomain.Status,
) (*notifdomain.Notification, error) {
	if g.AssignedTo() == nil {
		return nil, nil
	}
	notif, err := notifdomain.NewNotification(
		*g.AssignedTo(),
		notifdomain.TypeGigStatusChanged,
		"Gig status changed",
		fmt.Sprintf("%q moved from %s to %s", g.Title(), oldStatus, g.Status()),
		g.ID(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build notification: %w", err)
	}
	return notif, nil
}

// afterCommit publishes events and drops stale dashboard summaries.
// Failures here are logged, not returned: the transition is already durable.
func (uc *ChangeStatusUseCase) afterCommit(
	ctx context.Context,
	g *gigdomain.Gig,
	oldStatus gigdomain.Status,
	notif *notifdomain.Notification,
) {
	metadata := event.NewMetadata(g.PosterID().String(), "", "")

	if uc.bus != nil {
		evt := gigdomain.NewStatusChanged(g.ID(), g.PosterID(), oldStatus, g.Status(), metadata)
		if err := uc.bus.Publish(ctx, evt); err != nil {
			uc.logger.WarnContext(ctx, "failed to publish gig status event",
				slog.String("gig_id", g.ID().String()),
				slog.String("error", err.Error()),
			)
		}
		if notif != nil {
			if err := uc.bus.Publish(ctx, notifdomain.NewCreated(notif, metadata)); err != nil {
				uc.logger.WarnContext(ctx, "failed to publish notification event",
					slog.String("notification_id", notif.ID().String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if uc.summaries != nil && g.Status() == gigdomain.StatusCompleted {
		targets := []uuid.UUID{g.PosterID()}
		if g.AssignedTo() != nil {
			targets = append(targets, *g.AssignedTo())
		}
		for _, id := range targets {
			if err := uc.summaries.Invalidate(ctx, id); err != nil {
				uc.logger.WarnContext(ctx, "failed to invalidate dashboard summary",
					slog.String("user_id", id.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (uc *ChangeStatusUseCase) validate(cmd ChangeStatusCommand) error {
	if err := appcore.ValidateUUID("gigID", cmd.GigID); err != nil {
		return err
	}
	if err := appcore.ValidateUUID("actorID", cmd.ActorID); err != nil {
		return err
	}
	return appcore.ValidateEnum("newStatus", string(cmd.NewStatus), []string{
		string(gigdomain.StatusInProgress),
		string(gigdomain.StatusInReview),
		string(gigdomain.StatusCompleted),
	})
}
