package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/worker"
	"github.com/lllypuk/gigwork/tests/mocks"
)

type sweepFixture struct {
	gigs    *mocks.GigRepository
	notifs  *mocks.NotificationRepository
	bus     *mocks.EventBus
	sweeper *worker.DeadlineSweeper
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	f := &sweepFixture{
		gigs:   mocks.NewGigRepository(),
		notifs: mocks.NewNotificationRepository(),
		bus:    mocks.NewEventBus(),
	}
	f.sweeper = worker.NewDeadlineSweeper(
		f.gigs, f.notifs, f.bus, nil, worker.DefaultDeadlineSweepConfig(),
	)
	return f
}

func (f *sweepFixture) addGig(t *testing.T, deadline time.Time, assignee *uuid.UUID) *gigdomain.Gig {
	t.Helper()

	g, err := gigdomain.NewGig(
		uuid.NewUUID(), "Logo refresh", "New logo and brand colors",
		gigdomain.PriorityMedium, 400, deadline, []string{"design"},
	)
	require.NoError(t, err)
	if assignee != nil {
		require.NoError(t, g.Assign(*assignee))
	}
	require.NoError(t, f.gigs.Save(context.Background(), g))
	return g
}

func TestDeadlineSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("reminds poster and assignee inside the window", func(t *testing.T) {
		f := newSweepFixture(t)
		assignee := uuid.NewUUID()
		g := f.addGig(t, time.Now().Add(12*time.Hour), &assignee)

		sent, err := f.sweeper.SweepOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, sent)

		posterInbox := f.notifs.ForUser(g.PosterID())
		require.Len(t, posterInbox, 1)
		assert.Equal(t, notifdomain.TypeDeadlineApproaching, posterInbox[0].Type())
		assert.Equal(t, g.ID(), posterInbox[0].RelatedGigID())

		require.Len(t, f.notifs.ForUser(assignee), 1)
		assert.Len(t, f.bus.EventsOfType(notifdomain.EventTypeCreated), 2)
	})

	t.Run("open gig reminds only the poster", func(t *testing.T) {
		f := newSweepFixture(t)
		g := f.addGig(t, time.Now().Add(12*time.Hour), nil)

		sent, err := f.sweeper.SweepOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Len(t, f.notifs.ForUser(g.PosterID()), 1)
	})

	t.Run("gig due beyond the window is left alone", func(t *testing.T) {
		f := newSweepFixture(t)
		g := f.addGig(t, time.Now().Add(30*24*time.Hour), nil)

		sent, err := f.sweeper.SweepOnce(ctx)

		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Empty(t, f.notifs.ForUser(g.PosterID()))
	})

	t.Run("repeat sweep sends no duplicate reminders", func(t *testing.T) {
		f := newSweepFixture(t)
		f.addGig(t, time.Now().Add(12*time.Hour), nil)

		first, err := f.sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, first)

		second, err := f.sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, second)
	})

	t.Run("empty repository sweeps cleanly", func(t *testing.T) {
		f := newSweepFixture(t)

		sent, err := f.sweeper.SweepOnce(ctx)

		require.NoError(t, err)
		assert.Zero(t, sent)
	})
}

func TestDeadlineSweeper_Run_Disabled(t *testing.T) {
	cfg := worker.DefaultDeadlineSweepConfig()
	cfg.Enabled = false

	sweeper := worker.NewDeadlineSweeper(
		mocks.NewGigRepository(), mocks.NewNotificationRepository(), mocks.NewEventBus(), nil, cfg,
	)

	err := sweeper.Run(context.Background())
	require.NoError(t, err)
}

func TestDefaultDeadlineSweepConfig(t *testing.T) {
	cfg := worker.DefaultDeadlineSweepConfig()

	assert.Equal(t, 1*time.Hour, cfg.Interval)
	assert.Equal(t, 48*time.Hour, cfg.Window)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 24, cfg.DedupeHours)
	assert.True(t, cfg.Enabled)
}
