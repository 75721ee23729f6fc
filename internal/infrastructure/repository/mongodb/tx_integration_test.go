//go:build integration

package mongodb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appusecase "github.com/lllypuk/gigwork/internal/application/application"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/gigwork/tests/mocks"
	"github.com/lllypuk/gigwork/tests/testutil"
)

type txFixture struct {
	runner       *mongodb.MongoTxRunner
	gigs         *mongodb.MongoGigRepository
	applications *mongodb.MongoApplicationRepository
	notifs       *mongodb.MongoNotificationRepository
}

func newTxFixture(t *testing.T) txFixture {
	t.Helper()

	client, db := testutil.SetupTestMongoDBWithClient(t)
	return txFixture{
		runner:       mongodb.NewMongoTxRunner(client),
		gigs:         mongodb.NewMongoGigRepository(db.Collection(mongodb.GigsCollection)),
		applications: mongodb.NewMongoApplicationRepository(db.Collection(mongodb.ApplicationsCollection)),
		notifs:       mongodb.NewMongoNotificationRepository(db.Collection(mongodb.NotificationsCollection)),
	}
}

func (f txFixture) seedOpenGigWithApplication(t *testing.T, ctx context.Context) (*gigdomain.Gig, *appdomain.Application) {
	t.Helper()

	g := newOpenGig(t, uuid.NewUUID())
	require.NoError(t, f.gigs.Save(ctx, g))

	app, err := appdomain.NewApplication(g.ID(), uuid.NewUUID(), "I can start right away.")
	require.NoError(t, err)
	require.NoError(t, f.applications.Save(ctx, app))

	return g, app
}

// TestMongoTxRunner_RollsBackOnError runs the writes the accept workflow
// makes — assign the gig, accept the application, store a notification — and
// fails the transaction at the end. None of the writes may survive.
func TestMongoTxRunner_RollsBackOnError(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	f := newTxFixture(t)

	g, app := f.seedOpenGigWithApplication(t, ctx)

	require.NoError(t, g.Assign(app.ApplicantID()))
	require.NoError(t, app.Accept())
	n, err := notifdomain.NewNotification(app.ApplicantID(),
		notifdomain.TypeApplicationAccepted, "Application accepted",
		"You were selected", g.ID())
	require.NoError(t, err)

	errSettle := errors.New("settle failed")
	err = f.runner.WithinTransaction(ctx, func(txCtx context.Context) error {
		if saveErr := f.gigs.SaveIfOpen(txCtx, g); saveErr != nil {
			return saveErr
		}
		if saveErr := f.applications.Save(txCtx, app); saveErr != nil {
			return saveErr
		}
		if saveErr := f.notifs.Save(txCtx, n); saveErr != nil {
			return saveErr
		}
		return errSettle
	})
	require.ErrorIs(t, err, errSettle)

	storedGig, err := f.gigs.FindByID(ctx, g.ID())
	require.NoError(t, err)
	assert.Equal(t, gigdomain.StatusOpen, storedGig.Status())
	assert.Nil(t, storedGig.AssignedTo())

	storedApp, err := f.applications.FindByID(ctx, app.ID())
	require.NoError(t, err)
	assert.True(t, storedApp.IsPending())

	count, err := f.notifs.CountByUser(ctx, app.ApplicantID(), false)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// TestAcceptApplicationUseCase_SettlesGigInMongoDB drives the real accept
// use case over MongoDB repositories and the transaction runner: the winner
// is accepted, the gig assigned, the rival rejected and both notified, all
// in one commit.
func TestAcceptApplicationUseCase_SettlesGigInMongoDB(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	f := newTxFixture(t)

	posterID := uuid.NewUUID()
	g := newOpenGig(t, posterID)
	require.NoError(t, f.gigs.Save(ctx, g))

	winner, err := appdomain.NewApplication(g.ID(), uuid.NewUUID(), "Pick me.")
	require.NoError(t, err)
	require.NoError(t, f.applications.Save(ctx, winner))

	rival, err := appdomain.NewApplication(g.ID(), uuid.NewUUID(), "No, me.")
	require.NoError(t, err)
	require.NoError(t, f.applications.Save(ctx, rival))

	bus := mocks.NewEventBus()
	uc := appusecase.NewAcceptApplicationUseCase(f.applications, f.gigs, f.notifs, f.runner, bus, nil, nil)

	result, err := uc.Execute(ctx, appusecase.AcceptApplicationCommand{
		ApplicationID: winner.ID(),
		ActorID:       posterID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Accepted)
	require.Len(t, result.Rejected, 1)

	storedGig, err := f.gigs.FindByID(ctx, g.ID())
	require.NoError(t, err)
	assert.Equal(t, gigdomain.StatusAssigned, storedGig.Status())
	require.NotNil(t, storedGig.AssignedTo())
	testutil.RequireUUIDEqual(t, winner.ApplicantID(), *storedGig.AssignedTo())

	storedWinner, err := f.applications.FindByID(ctx, winner.ID())
	require.NoError(t, err)
	assert.Equal(t, appdomain.StatusAccepted, storedWinner.Status())

	storedRival, err := f.applications.FindByID(ctx, rival.ID())
	require.NoError(t, err)
	assert.Equal(t, appdomain.StatusRejected, storedRival.Status())

	winnerNotifs, err := f.notifs.CountByUser(ctx, winner.ApplicantID(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, winnerNotifs)

	rivalNotifs, err := f.notifs.CountByUser(ctx, rival.ApplicantID(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, rivalNotifs)

	testutil.AssertEventPublished(t, bus.Events(), gigdomain.EventTypeAssigned)
}
