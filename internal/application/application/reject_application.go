package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/event"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
)

// RejectApplicationUseCase rejects a single pending application. The gig is
// untouched; only the application and the applicant's notification change.
type RejectApplicationUseCase struct {
	applications appdomain.Repository
	gigs         gigdomain.Repository
	notifs       notifdomain.Repository
	tx           appcore.TxRunner
	bus          event.Bus
	logger       *slog.Logger
}

// NewRejectApplicationUseCase creates the use case.
func NewRejectApplicationUseCase(
	applications appdomain.Repository,
	gigs gigdomain.Repository,
	notifs notifdomain.Repository,
	tx appcore.TxRunner,
	bus event.Bus,
	logger *slog.Logger,
) *RejectApplicationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RejectApplicationUseCase{
		applications: applications, gigs: gigs, notifs: notifs,
		tx: tx, bus: bus, logger: logger,
	}
}

// Execute rejects the application identified by cmd.
func (uc *RejectApplicationUseCase) Execute(ctx context.Context, cmd RejectApplicationCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	app, err := uc.applications.FindByID(ctx, cmd.ApplicationID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, ErrApplicationNotFound
		}
		return Result{}, fmt.Errorf("failed to find application: %w", err)
	}

	g, err := uc.gigs.FindByID(ctx, app.GigID())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, ErrGigNotFound
		}
		return Result{}, fmt.Errorf("failed to find gig: %w", err)
	}
	if !g.IsPostedBy(cmd.ActorID) {
		return Result{}, ErrNotGigPoster
	}

	if rejectErr := app.Reject(); rejectErr != nil {
		return Result{}, ErrAlreadyResolved
	}

	notif, err := notifdomain.NewNotification(
		app.ApplicantID(),
		notifdomain.TypeApplicationRejected,
		"Application not selected",
		fmt.Sprintf("Your application for %q was not selected", g.Title()),
		g.ID(),
	)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build notification: %w", err)
	}

	txErr := uc.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if saveErr := uc.applications.Save(txCtx, app); saveErr != nil {
			return fmt.Errorf("failed to save application: %w", saveErr)
		}
		if saveErr := uc.notifs.Save(txCtx, notif); saveErr != nil {
			return fmt.Errorf("failed to save notification: %w", saveErr)
		}
		return nil
	})
	if txErr != nil {
		return Result{}, txErr
	}

	uc.afterCommit(ctx, app, notif)

	return Result{Result: appcore.Result[*appdomain.Application]{Value: app}}, nil
}

func (uc *RejectApplicationUseCase) afterCommit(
	ctx context.Context,
	app *appdomain.Application,
	notif *notifdomain.Notification,
) {
	if uc.bus == nil {
		return
	}
	metadata := event.NewMetadata(app.ApplicantID().String(), "", "")
	evt := appdomain.NewResolved(app.ID(), app.GigID(), app.ApplicantID(), appdomain.StatusRejected, metadata)
	if err := uc.bus.Publish(ctx, evt); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish application.rejected",
			slog.String("application_id", app.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	if err := uc.bus.Publish(ctx, notifdomain.NewCreated(notif, metadata)); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish notification event",
			slog.String("notification_id", notif.ID().String()),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *RejectApplicationUseCase) validate(cmd RejectApplicationCommand) error {
	if err := appcore.ValidateUUID("applicationID", cmd.ApplicationID); err != nil {
		return err
	}
	return appcore.ValidateUUID("actorID", cmd.ActorID)
}
