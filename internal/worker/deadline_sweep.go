// Package worker contains the background jobs that run outside the API
// process.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/event"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Default deadline sweep configuration values.
const (
	defaultSweepInterval   = 1 * time.Hour
	defaultDeadlineWindow  = 48 * time.Hour
	defaultSweepBatchSize  = 500
	defaultDedupeHours     = 24
	deadlineTimeFormat     = "Jan 2, 15:04 MST"
	deadlineReminderTitle  = "Deadline approaching"
)

// DeadlineSweepConfig contains configuration for the deadline sweeper.
type DeadlineSweepConfig struct {
	// Interval is the time between sweeps.
	Interval time.Duration

	// Window is how far ahead of a deadline reminders start.
	Window time.Duration

	// BatchSize caps the gigs examined per sweep.
	BatchSize int

	// DedupeHours suppresses a repeat reminder for the same user and gig
	// within this many hours.
	DedupeHours int

	// Enabled determines if the sweeper should run.
	Enabled bool
}

// DefaultDeadlineSweepConfig returns sensible default configuration.
func DefaultDeadlineSweepConfig() DeadlineSweepConfig {
	return DeadlineSweepConfig{
		Interval:    defaultSweepInterval,
		Window:      defaultDeadlineWindow,
		BatchSize:   defaultSweepBatchSize,
		DedupeHours: defaultDedupeHours,
		Enabled:     true,
	}
}

// DeadlineSweeper reminds posters and assignees about gigs whose deadline
// falls inside the configured window. Reminders for gigs that already
// received one within DedupeHours are skipped, so repeated sweeps over the
// same window stay quiet.
type DeadlineSweeper struct {
	gigs   gigdomain.Repository
	notifs notifdomain.Repository
	bus    event.Bus
	logger *slog.Logger
	config DeadlineSweepConfig
}

// NewDeadlineSweeper creates a new deadline sweeper.
func NewDeadlineSweeper(
	gigs gigdomain.Repository,
	notifs notifdomain.Repository,
	bus event.Bus,
	logger *slog.Logger,
	config DeadlineSweepConfig,
) *DeadlineSweeper {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeadlineSweeper{
		gigs:   gigs,
		notifs: notifs,
		bus:    bus,
		logger: logger,
		config: config,
	}
}

// Run starts the sweeper and runs until the context is cancelled. The
// first sweep happens immediately; later sweeps follow the interval.
func (w *DeadlineSweeper) Run(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.InfoContext(ctx, "deadline sweeper is disabled")
		return nil
	}

	w.logger.InfoContext(ctx, "starting deadline sweeper",
		slog.Duration("interval", w.config.Interval),
		slog.Duration("window", w.config.Window),
	)

	if _, err := w.SweepOnce(ctx); err != nil {
		w.logger.ErrorContext(ctx, "deadline sweep failed",
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "deadline sweeper stopped")
			return ctx.Err()

		case <-ticker.C:
			if _, err := w.SweepOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "deadline sweep failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// SweepOnce runs a single sweep and returns how many reminders it sent.
func (w *DeadlineSweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(w.config.Window)

	gigs, err := w.gigs.ListDueBefore(ctx, cutoff, w.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due gigs: %w", err)
	}

	sent := 0
	for _, g := range gigs {
		sent += w.remindGig(ctx, g)
	}

	w.logger.InfoContext(ctx, "deadline sweep complete",
		slog.Int("gigs_examined", len(gigs)),
		slog.Int("reminders_sent", sent),
	)

	return sent, nil
}

// remindGig sends reminders for one gig: always the poster, plus the
// assignee once the gig is assigned.
func (w *DeadlineSweeper) remindGig(ctx context.Context, g *gigdomain.Gig) int {
	sent := 0

	if w.remindUser(ctx, g, g.PosterID()) {
		sent++
	}
	if assignee := g.AssignedTo(); assignee != nil {
		if w.remindUser(ctx, g, *assignee) {
			sent++
		}
	}

	return sent
}

// remindUser sends a single reminder unless one was already sent recently.
// A failure is logged and skipped; the sweep continues with the next gig.
func (w *DeadlineSweeper) remindUser(ctx context.Context, g *gigdomain.Gig, userID uuid.UUID) bool {
	exists, err := w.notifs.ExistsForGigSince(
		ctx, userID, g.ID(), notifdomain.TypeDeadlineApproaching, w.config.DedupeHours,
	)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to check for prior reminder",
			slog.String("gig_id", g.ID().String()),
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return false
	}
	if exists {
		return false
	}

	notif, err := notifdomain.NewNotification(
		userID,
		notifdomain.TypeDeadlineApproaching,
		deadlineReminderTitle,
		fmt.Sprintf("%q is due %s", g.Title(), g.Deadline().Format(deadlineTimeFormat)),
		g.ID(),
	)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to build deadline reminder",
			slog.String("gig_id", g.ID().String()),
			slog.String("error", err.Error()),
		)
		return false
	}

	if saveErr := w.notifs.Save(ctx, notif); saveErr != nil {
		w.logger.WarnContext(ctx, "failed to save deadline reminder",
			slog.String("gig_id", g.ID().String()),
			slog.String("user_id", userID.String()),
			slog.String("error", saveErr.Error()),
		)
		return false
	}

	w.publishCreated(ctx, notif)
	return true
}

// publishCreated pushes the reminder onto the bus so a connected recipient
// sees it live. Publish failure never undoes the stored notification.
func (w *DeadlineSweeper) publishCreated(ctx context.Context, notif *notifdomain.Notification) {
	if w.bus == nil {
		return
	}

	metadata := event.NewMetadata(notif.UserID().String(), "", "")
	if err := w.bus.Publish(ctx, notifdomain.NewCreated(notif, metadata)); err != nil {
		w.logger.WarnContext(ctx, "failed to publish notification event",
			slog.String("notification_id", notif.ID().String()),
			slog.String("error", err.Error()),
		)
	}
}
