//go:build integration

package mongodb_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/gigwork/tests/testutil"
)

const bsonTimeDelta = time.Second

func newGigRepository(t *testing.T) *mongodb.MongoGigRepository {
	t.Helper()

	db := testutil.SetupTestMongoDB(t)
	return mongodb.NewMongoGigRepository(db.Collection(mongodb.GigsCollection))
}

func newOpenGig(t *testing.T, posterID uuid.UUID) *gigdomain.Gig {
	t.Helper()

	g, err := gigdomain.NewGig(posterID, "API integration", "Wire up the payment provider",
		gigdomain.PriorityHigh, 1200, time.Now().Add(30*24*time.Hour), []string{"go", "rest"})
	require.NoError(t, err)
	return g
}

func TestMongoGigRepository_SaveAndFindRoundTrip(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	repo := newGigRepository(t)

	posterID := uuid.NewUUID()
	freelancerID := uuid.NewUUID()

	g := newOpenGig(t, posterID)
	require.NoError(t, g.Assign(freelancerID))
	require.NoError(t, g.ChangeStatus(gigdomain.StatusInProgress))
	require.NoError(t, g.UpdateProgress(40))
	milestone, err := g.AddMilestone("Wireframes", "Initial sketches", time.Now().Add(7*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, g.CompleteMilestone(milestone.ID))

	require.NoError(t, repo.Save(ctx, g))

	got, err := repo.FindByID(ctx, g.ID())
	require.NoError(t, err)

	testutil.RequireUUIDEqual(t, g.ID(), got.ID())
	testutil.RequireUUIDEqual(t, posterID, got.PosterID())
	require.NotNil(t, got.AssignedTo())
	testutil.RequireUUIDEqual(t, freelancerID, *got.AssignedTo())
	assert.Equal(t, g.Title(), got.Title())
	assert.Equal(t, g.Description(), got.Description())
	assert.Equal(t, gigdomain.StatusInProgress, got.Status())
	assert.Equal(t, gigdomain.PriorityHigh, got.Priority())
	assert.InDelta(t, g.Budget(), got.Budget(), 0.001)
	assert.Equal(t, g.Skills(), got.Skills())
	assert.Equal(t, 40, got.Progress())

	require.Len(t, got.Milestones(), 1)
	stored := got.Milestones()[0]
	testutil.RequireUUIDEqual(t, milestone.ID, stored.ID)
	assert.Equal(t, milestone.Title, stored.Title)
	assert.True(t, stored.Completed)
	testutil.AssertTimeApproximatelyEqual(t, milestone.DueDate, stored.DueDate, bsonTimeDelta)

	testutil.AssertTimeApproximatelyEqual(t, g.Deadline(), got.Deadline(), bsonTimeDelta)
	testutil.AssertTimeApproximatelyEqual(t, g.CreatedAt(), got.CreatedAt(), bsonTimeDelta)
	testutil.AssertTimeApproximatelyEqual(t, g.UpdatedAt(), got.UpdatedAt(), bsonTimeDelta)
}

func TestMongoGigRepository_FindByID_NotFound(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	repo := newGigRepository(t)

	_, err := repo.FindByID(ctx, uuid.NewUUID())
	require.ErrorIs(t, err, errs.ErrNotFound)
}

// TestMongoGigRepository_SaveIfOpen_ConcurrentAssign races two assignments
// over stale copies of the same open gig. The conditional update matches the
// stored document only while it is open, so exactly one write lands.
func TestMongoGigRepository_SaveIfOpen_ConcurrentAssign(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	repo := newGigRepository(t)

	g := newOpenGig(t, uuid.NewUUID())
	require.NoError(t, repo.Save(ctx, g))

	first, err := repo.FindByID(ctx, g.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, g.ID())
	require.NoError(t, err)

	winner := uuid.NewUUID()
	require.NoError(t, first.Assign(winner))
	require.NoError(t, repo.SaveIfOpen(ctx, first))

	// The second copy still believes the gig is open
	require.NoError(t, second.Assign(uuid.NewUUID()))
	err = repo.SaveIfOpen(ctx, second)
	require.ErrorIs(t, err, errs.ErrConcurrentModification)

	stored, err := repo.FindByID(ctx, g.ID())
	require.NoError(t, err)
	assert.Equal(t, gigdomain.StatusAssigned, stored.Status())
	require.NotNil(t, stored.AssignedTo())
	testutil.RequireUUIDEqual(t, winner, *stored.AssignedTo())
}

func TestMongoGigRepository_SaveIfOpen_MissingGig(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	repo := newGigRepository(t)

	g := newOpenGig(t, uuid.NewUUID())
	require.NoError(t, g.Assign(uuid.NewUUID()))

	// Never stored, so the conditional update matches nothing
	err := repo.SaveIfOpen(ctx, g)
	require.ErrorIs(t, err, errs.ErrConcurrentModification)
}

func TestMongoGigRepository_ListDueBefore(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	repo := newGigRepository(t)

	posterID := uuid.NewUUID()

	soon := newOpenGig(t, posterID)
	require.NoError(t, repo.Save(ctx, soon))

	later, err := gigdomain.NewGig(posterID, "Later gig", "Not urgent yet",
		gigdomain.PriorityLow, 300, time.Now().Add(90*24*time.Hour), []string{"go"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, later))

	done := newOpenGig(t, posterID)
	require.NoError(t, done.Assign(uuid.NewUUID()))
	for _, step := range []gigdomain.Status{
		gigdomain.StatusInProgress, gigdomain.StatusInReview, gigdomain.StatusCompleted,
	} {
		require.NoError(t, done.ChangeStatus(step))
	}
	require.NoError(t, repo.Save(ctx, done))

	due, err := repo.ListDueBefore(ctx, time.Now().Add(45*24*time.Hour), 10)
	require.NoError(t, err)

	// The completed gig shares the near deadline but must not be reminded
	require.Len(t, due, 1)
	testutil.RequireUUIDEqual(t, soon.ID(), due[0].ID())
}
