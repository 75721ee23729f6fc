package notification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appnotif "github.com/lllypuk/gigwork/internal/application/notification"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/tests/mocks"
)

func seedNotification(t *testing.T, repo *mocks.NotificationRepository, userID uuid.UUID) *notifdomain.Notification {
	t.Helper()
	n, err := notifdomain.NewNotification(userID, notifdomain.TypeSystem,
		"Welcome", "Your profile is ready", uuid.UUID(""))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), n))
	return n
}

func TestMarkReadUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewUUID()

	t.Run("marks unread notification", func(t *testing.T) {
		repo := mocks.NewNotificationRepository()
		n := seedNotification(t, repo, userID)
		uc := appnotif.NewMarkReadUseCase(repo)

		marked, err := uc.Execute(ctx, appnotif.MarkReadCommand{
			NotificationID: n.ID(),
			ActorID:        userID,
		})
		require.NoError(t, err)
		assert.True(t, marked.IsRead())
		assert.NotNil(t, marked.ReadAt())
	})

	t.Run("marking twice is a no-op", func(t *testing.T) {
		repo := mocks.NewNotificationRepository()
		n := seedNotification(t, repo, userID)
		uc := appnotif.NewMarkReadUseCase(repo)

		cmd := appnotif.MarkReadCommand{NotificationID: n.ID(), ActorID: userID}
		_, err := uc.Execute(ctx, cmd)
		require.NoError(t, err)

		marked, err := uc.Execute(ctx, cmd)
		require.NoError(t, err)
		assert.True(t, marked.IsRead())
	})

	t.Run("only the recipient may mark", func(t *testing.T) {
		repo := mocks.NewNotificationRepository()
		n := seedNotification(t, repo, userID)
		uc := appnotif.NewMarkReadUseCase(repo)

		_, err := uc.Execute(ctx, appnotif.MarkReadCommand{
			NotificationID: n.ID(),
			ActorID:        uuid.NewUUID(),
		})
		assert.ErrorIs(t, err, appnotif.ErrNotRecipient)
	})

	t.Run("unknown notification", func(t *testing.T) {
		uc := appnotif.NewMarkReadUseCase(mocks.NewNotificationRepository())

		_, err := uc.Execute(ctx, appnotif.MarkReadCommand{
			NotificationID: uuid.NewUUID(),
			ActorID:        userID,
		})
		assert.ErrorIs(t, err, appnotif.ErrNotificationNotFound)
	})
}

func TestMarkAllReadUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewUUID()
	repo := mocks.NewNotificationRepository()
	for range 3 {
		seedNotification(t, repo, userID)
	}
	seedNotification(t, repo, uuid.NewUUID())

	uc := appnotif.NewMarkAllReadUseCase(repo)
	count, err := uc.Execute(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = uc.Execute(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListNotificationsUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewUUID()
	repo := mocks.NewNotificationRepository()
	for range 5 {
		seedNotification(t, repo, userID)
	}

	mark := appnotif.NewMarkReadUseCase(repo)
	first := repo.ForUser(userID)[0]
	_, err := mark.Execute(ctx, appnotif.MarkReadCommand{NotificationID: first.ID(), ActorID: userID})
	require.NoError(t, err)

	list := appnotif.NewListNotificationsUseCase(repo)

	result, err := list.Execute(ctx, appnotif.ListQuery{UserID: userID, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, result.Notifications, 3)
	assert.Equal(t, 4, result.UnreadCount)

	result, err = list.Execute(ctx, appnotif.ListQuery{UserID: userID, UnreadOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, result.Notifications, 4)

	count, err := appnotif.NewUnreadCountUseCase(repo).Execute(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
