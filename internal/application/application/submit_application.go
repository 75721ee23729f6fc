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
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
)

// MaxCoverLetterLength bounds the cover letter text.
const MaxCoverLetterLength = 5000

// SubmitApplicationUseCase lets a freelancer apply to an open gig. The
// application and the poster's notification are written in one transaction.
type SubmitApplicationUseCase struct {
	applications appdomain.Repository
	gigs         gigdomain.Repository
	users        userdomain.Repository
	notifs       notifdomain.Repository
	tx           appcore.TxRunner
	bus          event.Bus
	logger       *slog.Logger
}

// NewSubmitApplicationUseCase creates the use case.
func NewSubmitApplicationUseCase(
	applications appdomain.Repository,
	gigs gigdomain.Repository,
	users userdomain.Repository,
	notifs notifdomain.Repository,
	tx appcore.TxRunner,
	bus event.Bus,
	logger *slog.Logger,
) *SubmitApplicationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitApplicationUseCase{
		applications: applications, gigs: gigs, users: users, notifs: notifs,
		tx: tx, bus: bus, logger: logger,
	}
}

// Execute submits the application described by cmd. The gig must still be
// open; this is enforced here, not left to the caller.
func (uc *SubmitApplicationUseCase) Execute(ctx context.Context, cmd SubmitApplicationCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	applicant, err := uc.users.FindByID(ctx, cmd.ApplicantID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, appcore.ErrUserNotFound
		}
		return Result{}, fmt.Errorf("failed to find applicant: %w", err)
	}
	if !applicant.IsFreelancer() {
		return Result{}, ErrNotAFreelancer
	}

	g, err := uc.gigs.FindByID(ctx, cmd.GigID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return Result{}, ErrGigNotFound
		}
		return Result{}, fmt.Errorf("failed to find gig: %w", err)
	}
	if !g.IsOpen() {
		return Result{}, ErrGigNotOpen
	}

	uc.logDuplicate(ctx, cmd)

	app, err := appdomain.NewApplication(cmd.GigID, cmd.ApplicantID, cmd.CoverLetter)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create application: %w", err)
	}

	notif, err := notifdomain.NewNotification(
		g.PosterID(),
		notifdomain.TypeApplicationReceived,
		"New application",
		fmt.Sprintf("%s applied to %q", applicant.DisplayName(), g.Title()),
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

	uc.afterCommit(ctx, app, g, notif)

	return Result{Result: appcore.Result[*appdomain.Application]{Value: app}}, nil
}

// logDuplicate flags repeat submissions for the same gig. Duplicates are
// allowed, so a failure to count never blocks the submission.
func (uc *SubmitApplicationUseCase) logDuplicate(ctx context.Context, cmd SubmitApplicationCommand) {
	count, err := uc.applications.CountByGigAndApplicant(ctx, cmd.GigID, cmd.ApplicantID)
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to count prior applications",
			slog.String("gig_id", cmd.GigID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	if count > 0 {
		uc.logger.InfoContext(ctx, "duplicate application submitted",
			slog.String("gig_id", cmd.GigID.String()),
			slog.String("applicant_id", cmd.ApplicantID.String()),
			slog.Int("prior_count", count),
		)
	}
}

func (uc *SubmitApplicationUseCase) afterCommit(
	ctx context.Context,
	app *appdomain.Application,
	g *gigdomain.Gig,
	notif *notifdomain.Notification,
) {
	if uc.bus == nil {
		return
	}
	metadata := event.NewMetadata(app.ApplicantID().String(), "", "")
	evt := appdomain.NewSubmitted(app.ID(), g.ID(), app.ApplicantID(), g.PosterID(), metadata)
	if err := uc.bus.Publish(ctx, evt); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish application.submitted",
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

func (uc *SubmitApplicationUseCase) validate(cmd SubmitApplicationCommand) error {
	if err := appcore.ValidateUUID("gigID", cmd.GigID); err != nil {
		return err
	}
	if err := appcore.ValidateUUID("applicantID", cmd.ApplicantID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("coverLetter", cmd.CoverLetter); err != nil {
		return err
	}
	return appcore.ValidateMaxLength("coverLetter", cmd.CoverLetter, MaxCoverLetterLength)
}
