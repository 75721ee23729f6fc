package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	appapp "github.com/lllypuk/gigwork/internal/application/application"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/tests/mocks"
)

// hookTxRunner runs a hook right before the first transaction body, so tests
// can interleave a competing write.
type hookTxRunner struct {
	before func()
}

func (h *hookTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if h.before != nil {
		hook := h.before
		h.before = nil
		hook()
	}
	return fn(ctx)
}

type acceptFixture struct {
	applications *mocks.ApplicationRepository
	gigs         *mocks.GigRepository
	users        *mocks.UserRepository
	notifs       *mocks.NotificationRepository
	bus          *mocks.EventBus
	summaries    *mocks.SummaryCache

	poster *userdomain.User
	gig    *gigdomain.Gig
}

func newAcceptFixture(t *testing.T) *acceptFixture {
	t.Helper()
	ctx := context.Background()

	f := &acceptFixture{
		applications: mocks.NewApplicationRepository(),
		gigs:         mocks.NewGigRepository(),
		users:        mocks.NewUserRepository(),
		notifs:       mocks.NewNotificationRepository(),
		bus:          mocks.NewEventBus(),
		summaries:    mocks.NewSummaryCache(),
	}

	poster, err := userdomain.NewUser("ext-poster", "poster@example.com", "Poster", userdomain.RoleClient)
	require.NoError(t, err)
	require.NoError(t, f.users.Save(ctx, poster))
	f.poster = poster

	g, err := gigdomain.NewGig(poster.ID(), "Logo design", "Design a logo for a coffee shop",
		gigdomain.PriorityMedium, 300, time.Now().Add(10*24*time.Hour), []string{"design"})
	require.NoError(t, err)
	require.NoError(t, f.gigs.Save(ctx, g))
	f.gig = g

	return f
}

func (f *acceptFixture) addFreelancer(t *testing.T, name string) *userdomain.User {
	t.Helper()
	u, err := userdomain.NewUser("ext-"+name, name+"@example.com", name, userdomain.RoleFreelancer)
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), u))
	return u
}

func (f *acceptFixture) apply(t *testing.T, applicant *userdomain.User) *appdomain.Application {
	t.Helper()
	app, err := appdomain.NewApplication(f.gig.ID(), applicant.ID(), "I would love to take this on")
	require.NoError(t, err)
	require.NoError(t, f.applications.Save(context.Background(), app))
	return app
}

func (f *acceptFixture) acceptUseCase(tx appcore.TxRunner) *appapp.AcceptApplicationUseCase {
	if tx == nil {
		tx = appcore.NopTxRunner{}
	}
	return appapp.NewAcceptApplicationUseCase(
		f.applications, f.gigs, f.notifs, tx, f.bus, f.summaries, nil)
}

func TestAcceptApplicationUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("accepting one settles the whole gig", func(t *testing.T) {
		f := newAcceptFixture(t)
		winner := f.addFreelancer(t, "alice")
		loser := f.addFreelancer(t, "bob")
		winnerApp := f.apply(t, winner)
		loserApp := f.apply(t, loser)
		uc := f.acceptUseCase(nil)

		result, err := uc.Execute(ctx, appapp.AcceptApplicationCommand{
			ApplicationID: winnerApp.ID(),
			ActorID:       f.poster.ID(),
		})
		require.NoError(t, err)

		assert.Equal(t, appdomain.StatusAccepted, result.Accepted.Status())
		require.Len(t, result.Rejected, 1)
		assert.Equal(t, loserApp.ID(), result.Rejected[0].ID())

		// gig assigned to the winner's applicant
		g, err := f.gigs.FindByID(ctx, f.gig.ID())
		require.NoError(t, err)
		assert.Equal(t, gigdomain.StatusAssigned, g.Status())
		require.NotNil(t, g.AssignedTo())
		assert.Equal(t, winner.ID(), *g.AssignedTo())

		// other application persisted as rejected
		stored, err := f.applications.FindByID(ctx, loserApp.ID())
		require.NoError(t, err)
		assert.Equal(t, appdomain.StatusRejected, stored.Status())

		// exactly one accepted and one rejected notification
		winnerInbox := f.notifs.ForUser(winner.ID())
		require.Len(t, winnerInbox, 1)
		assert.Equal(t, notifdomain.TypeApplicationAccepted, winnerInbox[0].Type())

		loserInbox := f.notifs.ForUser(loser.ID())
		require.Len(t, loserInbox, 1)
		assert.Equal(t, notifdomain.TypeApplicationRejected, loserInbox[0].Type())

		// events out after commit, summary dropped for the poster
		assert.Len(t, f.bus.EventsOfType(appdomain.EventTypeAccepted), 1)
		assert.Len(t, f.bus.EventsOfType(appdomain.EventTypeRejected), 1)
		assert.Len(t, f.bus.EventsOfType(gigdomain.EventTypeAssigned), 1)
		assert.Contains(t, f.summaries.Invalidated, f.poster.ID())
	})

	t.Run("re-accepting a resolved application changes nothing", func(t *testing.T) {
		f := newAcceptFixture(t)
		winner := f.addFreelancer(t, "alice")
		winnerApp := f.apply(t, winner)
		uc := f.acceptUseCase(nil)

		cmd := appapp.AcceptApplicationCommand{
			ApplicationID: winnerApp.ID(),
			ActorID:       f.poster.ID(),
		}
		_, err := uc.Execute(ctx, cmd)
		require.NoError(t, err)

		_, err = uc.Execute(ctx, cmd)
		assert.ErrorIs(t, err, appapp.ErrAlreadyResolved)

		// no duplicate notifications
		assert.Len(t, f.notifs.ForUser(winner.ID()), 1)
		assert.Len(t, f.bus.EventsOfType(appdomain.EventTypeAccepted), 1)
	})

	t.Run("accepting a rejected application fails", func(t *testing.T) {
		f := newAcceptFixture(t)
		winner := f.addFreelancer(t, "alice")
		loser := f.addFreelancer(t, "bob")
		winnerApp := f.apply(t, winner)
		loserApp := f.apply(t, loser)
		uc := f.acceptUseCase(nil)

		_, err := uc.Execute(ctx, appapp.AcceptApplicationCommand{
			ApplicationID: winnerApp.ID(),
			ActorID:       f.poster.ID(),
		})
		require.NoError(t, err)

		_, err = uc.Execute(ctx, appapp.AcceptApplicationCommand{
			ApplicationID: loserApp.ID(),
			ActorID:       f.poster.ID(),
		})
		assert.ErrorIs(t, err, appapp.ErrAlreadyResolved)
	})

	t.Run("first accepted wins a race", func(t *testing.T) {
		f := newAcceptFixture(t)
		first := f.addFreelancer(t, "alice")
		second := f.addFreelancer(t, "bob")
		firstApp := f.apply(t, first)
		secondApp := f.apply(t, second)

		firstUC := f.acceptUseCase(nil)
		// the competing accept commits between the loser's read and write
		secondUC := f.acceptUseCase(&hookTxRunner{before: func() {
			_, err := firstUC.Execute(ctx, appapp.AcceptApplicationCommand{
				ApplicationID: firstApp.ID(),
				ActorID:       f.poster.ID(),
			})
			require.NoError(t, err)
		}})

		_, err := secondUC.Execute(ctx, appapp.AcceptApplicationCommand{
			ApplicationID: secondApp.ID(),
			ActorID:       f.poster.ID(),
		})
		assert.ErrorIs(t, err, appapp.ErrGigAlreadyAssigned)

		g, err := f.gigs.FindByID(ctx, f.gig.ID())
		require.NoError(t, err)
		require.NotNil(t, g.AssignedTo())
		assert.Equal(t, first.ID(), *g.AssignedTo())

		// the winner's side effects stand; the loser wrote nothing
		assert.Len(t, f.notifs.ForUser(first.ID()), 1)
		assert.Len(t, f.bus.EventsOfType(gigdomain.EventTypeAssigned), 1)
	})

	t.Run("only the poster may accept", func(t *testing.T) {
		f := newAcceptFixture(t)
		winner := f.addFreelancer(t, "alice")
		winnerApp := f.apply(t, winner)
		uc := f.acceptUseCase(nil)

		_, err := uc.Execute(ctx, appapp.AcceptApplicationCommand{
			ApplicationID: winnerApp.ID(),
			ActorID:       winner.ID(),
		})
		assert.ErrorIs(t, err, appapp.ErrNotGigPoster)
	})

	t.Run("unknown application", func(t *testing.T) {
		f := newAcceptFixture(t)
		uc := f.acceptUseCase(nil)

		_, err := uc.Execute(ctx, appapp.AcceptApplicationCommand{
			ApplicationID: f.gig.ID(),
			ActorID:       f.poster.ID(),
		})
		assert.ErrorIs(t, err, appapp.ErrApplicationNotFound)
	})
}

func TestRejectApplicationUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects pending application without touching the gig", func(t *testing.T) {
		f := newAcceptFixture(t)
		applicant := f.addFreelancer(t, "alice")
		app := f.apply(t, applicant)
		uc := appapp.NewRejectApplicationUseCase(
			f.applications, f.gigs, f.notifs, appcore.NopTxRunner{}, f.bus, nil)

		result, err := uc.Execute(ctx, appapp.RejectApplicationCommand{
			ApplicationID: app.ID(),
			ActorID:       f.poster.ID(),
		})
		require.NoError(t, err)
		assert.Equal(t, appdomain.StatusRejected, result.Value.Status())

		g, err := f.gigs.FindByID(ctx, f.gig.ID())
		require.NoError(t, err)
		assert.Equal(t, gigdomain.StatusOpen, g.Status())

		inbox := f.notifs.ForUser(applicant.ID())
		require.Len(t, inbox, 1)
		assert.Equal(t, notifdomain.TypeApplicationRejected, inbox[0].Type())
	})

	t.Run("re-rejecting fails", func(t *testing.T) {
		f := newAcceptFixture(t)
		applicant := f.addFreelancer(t, "alice")
		app := f.apply(t, applicant)
		uc := appapp.NewRejectApplicationUseCase(
			f.applications, f.gigs, f.notifs, appcore.NopTxRunner{}, f.bus, nil)

		cmd := appapp.RejectApplicationCommand{ApplicationID: app.ID(), ActorID: f.poster.ID()}
		_, err := uc.Execute(ctx, cmd)
		require.NoError(t, err)

		_, err = uc.Execute(ctx, cmd)
		assert.ErrorIs(t, err, appapp.ErrAlreadyResolved)
		assert.Len(t, f.notifs.ForUser(applicant.ID()), 1)
	})
}
