package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	appgig "github.com/lllypuk/gigwork/internal/application/gig"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/event"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
)

// AcceptApplicationUseCase accepts one application and settles the whole gig
// in a single transaction: the winner is accepted, the gig is assigned, every
// other pending application is rejected, and each affected freelancer gets a
// notification. Either all of it commits or none of it does.
//
// The gig write is conditional on the gig still being open, so when two
// accepts race the first committed one wins and the second fails with
// ErrGigAlreadyAssigned.
type AcceptApplicationUseCase struct {
	applications appdomain.Repository
	gigs         gigdomain.Repository
	notifs       notifdomain.Repository
	tx           appcore.TxRunner
	bus          event.Bus
	summaries    appgig.SummaryInvalidator
	logger       *slog.Logger
}

// NewAcceptApplicationUseCase creates the use case.
func NewAcceptApplicationUseCase(
	applications appdomain.Repository,
	gigs gigdomain.Repository,
	notifs notifdomain.Repository,
	tx appcore.TxRunner,
	bus event.Bus,
	summaries appgig.SummaryInvalidator,
	logger *slog.Logger,
) *AcceptApplicationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcceptApplicationUseCase{
		applications: applications, gigs: gigs, notifs: notifs,
		tx: tx, bus: bus, summaries: summaries, logger: logger,
	}
}

// Execute accepts the application identified by cmd.
func (uc *AcceptApplicationUseCase) Execute(ctx context.Context, cmd AcceptApplicationCommand) (AcceptResult, error) {
	if err := uc.validate(cmd); err != nil {
		return AcceptResult{}, fmt.Errorf("validation failed: %w", err)
	}

	app, g, err := uc.load(ctx, cmd)
	if err != nil {
		return AcceptResult{}, err
	}

	if acceptErr := app.Accept(); acceptErr != nil {
		// Resolved applications stay resolved: re-accepting must not
		// re-run assignment or re-send notifications.
		return AcceptResult{}, ErrAlreadyResolved
	}
	if assignErr := g.Assign(app.ApplicantID()); assignErr != nil {
		return AcceptResult{}, ErrGigAlreadyAssigned
	}

	losers, err := uc.applications.ListPendingByGig(ctx, g.ID())
	if err != nil {
		return AcceptResult{}, fmt.Errorf("failed to list pending applications: %w", err)
	}

	rejected, notifs, err := uc.settle(g, app, losers)
	if err != nil {
		return AcceptResult{}, err
	}

	txErr := uc.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Conditional write: fails if another accept already closed the gig.
		if saveErr := uc.gigs.SaveIfOpen(txCtx, g); saveErr != nil {
			if errors.Is(saveErr, errs.ErrConcurrentModification) {
				return ErrGigAlreadyAssigned
			}
			return fmt.Errorf("failed to assign gig: %w", saveErr)
		}
		if saveErr := uc.applications.Save(txCtx, app); saveErr != nil {
			return fmt.Errorf("failed to save accepted application: %w", saveErr)
		}
		for _, loser := range rejected {
			if saveErr := uc.applications.Save(txCtx, loser); saveErr != nil {
				return fmt.Errorf("failed to save rejected application: %w", saveErr)
			}
		}
		for _, n := range notifs {
			if saveErr := uc.notifs.Save(txCtx, n); saveErr != nil {
				return fmt.Errorf("failed to save notification: %w", saveErr)
			}
		}
		return nil
	})
	if txErr != nil {
		return AcceptResult{}, txErr
	}

	uc.afterCommit(ctx, g, app, rejected, notifs)

	return AcceptResult{Accepted: app, Rejected: rejected}, nil
}

func (uc *AcceptApplicationUseCase) load(
	ctx context.Context,
	cmd AcceptApplicationCommand,
) (*appdomain.Application, *gigdomain.Gig, error) {
	app, err := uc.applications.FindByID(ctx, cmd.ApplicationID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil, ErrApplicationNotFound
		}
		return nil, nil, fmt.Errorf("failed to find application: %w", err)
	}

	g, err := uc.gigs.FindByID(ctx, app.GigID())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil, ErrGigNotFound
		}
		return nil, nil, fmt.Errorf("failed to find gig: %w", err)
	}
	if !g.IsPostedBy(cmd.ActorID) {
		return nil, nil, ErrNotGigPoster
	}
	return app, g, nil
}

// settle rejects the losing applications and builds the notification batch:
// one accepted for the winner, one rejected per loser.
func (uc *AcceptApplicationUseCase) settle(
	g *gigdomain.Gig,
	winner *appdomain.Application,
	pending []*appdomain.Application,
) ([]*appdomain.Application, []*notifdomain.Notification, error) {
	accepted, err := notifdomain.NewNotification(
		winner.ApplicantID(),
		notifdomain.TypeApplicationAccepted,
		"Application accepted",
		fmt.Sprintf("You were selected for %q", g.Title()),
		g.ID(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build notification: %w", err)
	}
	notifs := []*notifdomain.Notification{accepted}

	var rejected []*appdomain.Application
	for _, candidate := range pending {
		if candidate.ID() == winner.ID() {
			continue
		}
		if rejectErr := candidate.Reject(); rejectErr != nil {
			return nil, nil, fmt.Errorf("failed to reject application %s: %w", candidate.ID(), rejectErr)
		}
		rejected = append(rejected, candidate)

		n, buildErr := notifdomain.NewNotification(
			candidate.ApplicantID(),
			notifdomain.TypeApplicationRejected,
			"Application not selected",
			fmt.Sprintf("Another freelancer was selected for %q", g.Title()),
			g.ID(),
		)
		if buildErr != nil {
			return nil, nil, fmt.Errorf("failed to build notification: %w", buildErr)
		}
		notifs = append(notifs, n)
	}
	return rejected, notifs, nil
}

// afterCommit publishes lifecycle events and drops the poster's stale
// dashboard summary. The transaction is already committed; failures here are
// logged only.
func (uc *AcceptApplicationUseCase) afterCommit(
	ctx context.Context,
	g *gigdomain.Gig,
	winner *appdomain.Application,
	rejected []*appdomain.Application,
	notifs []*notifdomain.Notification,
) {
	metadata := event.NewMetadata(g.PosterID().String(), "", "")

	if uc.bus != nil {
		events := []event.DomainEvent{
			appdomain.NewResolved(winner.ID(), g.ID(), winner.ApplicantID(), appdomain.StatusAccepted, metadata),
			gigdomain.NewAssigned(g.ID(), g.PosterID(), winner.ApplicantID(), g.Title(), metadata),
		}
		for _, loser := range rejected {
			events = append(events,
				appdomain.NewResolved(loser.ID(), g.ID(), loser.ApplicantID(), appdomain.StatusRejected, metadata))
		}
		for _, n := range notifs {
			events = append(events, notifdomain.NewCreated(n, metadata))
		}
		for _, evt := range events {
			if err := uc.bus.Publish(ctx, evt); err != nil {
				uc.logger.WarnContext(ctx, "failed to publish event",
					slog.String("event_type", evt.EventType()),
					slog.String("gig_id", g.ID().String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if uc.summaries != nil {
		if err := uc.summaries.Invalidate(ctx, g.PosterID()); err != nil {
			uc.logger.WarnContext(ctx, "failed to invalidate dashboard summary",
				slog.String("user_id", g.PosterID().String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (uc *AcceptApplicationUseCase) validate(cmd AcceptApplicationCommand) error {
	if err := appcore.ValidateUUID("applicationID", cmd.ApplicationID); err != nil {
		return err
	}
	return appcore.ValidateUUID("actorID", cmd.ActorID)
}
