package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/user"
)

func TestNewUser(t *testing.T) {
	u, err := user.NewUser("ext-1", "client@example.com", "  Alice  ", user.RoleClient)
	require.NoError(t, err)

	assert.False(t, u.ID().IsZero())
	assert.Equal(t, "ext-1", u.ExternalID())
	assert.Equal(t, "client@example.com", u.Email())
	assert.Equal(t, "Alice", u.DisplayName(), "display name must be trimmed")
	assert.Equal(t, user.RoleClient, u.Role())
	assert.Empty(t, u.Skills())
	assert.Zero(t, u.CompletedGigs())
	assert.True(t, u.IsActive())
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name        string
		externalID  string
		email       string
		displayName string
		role        user.Role
	}{
		{"empty external id", "", "a@b.com", "Alice", user.RoleClient},
		{"empty email", "ext", "", "Alice", user.RoleClient},
		{"malformed email", "ext", "not-an-email", "Alice", user.RoleClient},
		{"blank display name", "ext", "a@b.com", "   ", user.RoleClient},
		{"unknown role", "ext", "a@b.com", "Alice", user.Role("manager")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := user.NewUser(tt.externalID, tt.email, tt.displayName, tt.role)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}

func TestUser_Rename(t *testing.T) {
	u := newFreelancer(t)

	require.NoError(t, u.Rename("Bob the Builder"))
	assert.Equal(t, "Bob the Builder", u.DisplayName())

	assert.ErrorIs(t, u.Rename("  "), errs.ErrInvalidInput)
}

func TestUser_UpdateSkills(t *testing.T) {
	u := newFreelancer(t)

	err := u.UpdateSkills([]string{"Web Development", "Design", "Web Development"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Web Development", "Design"}, u.Skills(), "duplicates dropped, order kept")

	assert.ErrorIs(t, u.UpdateSkills([]string{"Go", ""}), errs.ErrInvalidInput)
}

func TestUser_RecordGigCompletion(t *testing.T) {
	u := newFreelancer(t)

	u.RecordGigCompletion()
	u.RecordGigCompletion()

	assert.Equal(t, 2, u.CompletedGigs())
}

func TestUser_SetRating(t *testing.T) {
	u := newFreelancer(t)

	require.NoError(t, u.SetRating(4.5))
	assert.InDelta(t, 4.5, u.Rating(), 0.001)

	assert.ErrorIs(t, u.SetRating(5.1), errs.ErrInvalidInput)
	assert.ErrorIs(t, u.SetRating(-0.1), errs.ErrInvalidInput)
}

func TestUser_RoleChecks(t *testing.T) {
	client, err := user.NewUser("ext-c", "c@example.com", "Client", user.RoleClient)
	require.NoError(t, err)
	freelancer := newFreelancer(t)
	admin, err := user.NewUser("ext-a", "a@example.com", "Admin", user.RoleAdmin)
	require.NoError(t, err)

	assert.True(t, client.IsClient())
	assert.False(t, client.IsFreelancer())
	assert.True(t, freelancer.IsFreelancer())
	assert.False(t, freelancer.IsClient())
	assert.True(t, admin.IsClient(), "admins may act as clients")
}

func TestReconstruct(t *testing.T) {
	orig := newFreelancer(t)
	require.NoError(t, orig.UpdateSkills([]string{"Go"}))

	restored := user.Reconstruct(
		orig.ID(), orig.ExternalID(), orig.Email(), orig.DisplayName(),
		orig.Role(), orig.Skills(), orig.Rating(), orig.CompletedGigs(),
		orig.IsActive(), orig.CreatedAt(), orig.UpdatedAt(),
	)

	assert.Equal(t, orig.ID(), restored.ID())
	assert.Equal(t, orig.Skills(), restored.Skills())
	assert.Equal(t, orig.Role(), restored.Role())
}

func newFreelancer(t *testing.T) *user.User {
	t.Helper()
	u, err := user.NewUser("ext-f", "f@example.com", "Freelancer", user.RoleFreelancer)
	require.NoError(t, err)
	return u
}
