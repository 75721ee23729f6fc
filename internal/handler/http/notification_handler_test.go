package httphandler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifapp "github.com/lllypuk/gigwork/internal/application/notification"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	httphandler "github.com/lllypuk/gigwork/internal/handler/http"
)

type stubNotificationService struct {
	listFn        func(ctx context.Context, query notifapp.ListQuery) (notifapp.ListResult, error)
	markReadFn    func(ctx context.Context, cmd notifapp.MarkReadCommand) (*notifdomain.Notification, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int, error)
}

func (s *stubNotificationService) List(ctx context.Context, query notifapp.ListQuery) (notifapp.ListResult, error) {
	return s.listFn(ctx, query)
}

func (s *stubNotificationService) MarkRead(ctx context.Context, cmd notifapp.MarkReadCommand) (*notifdomain.Notification, error) {
	return s.markReadFn(ctx, cmd)
}

func (s *stubNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.markAllReadFn(ctx, userID)
}

func newTestNotification(t *testing.T, userID uuid.UUID) *notifdomain.Notification {
	t.Helper()
	n, err := notifdomain.NewNotification(
		userID,
		notifdomain.TypeApplicationReceived,
		"New application",
		"Someone applied to your gig",
		uuid.NewUUID(),
	)
	require.NoError(t, err)
	return n
}

func TestNotificationHandler_List(t *testing.T) {
	freelancer := freelancerIdentity()

	t.Run("lists the inbox with unread count", func(t *testing.T) {
		var captured notifapp.ListQuery
		service := &stubNotificationService{
			listFn: func(_ context.Context, query notifapp.ListQuery) (notifapp.ListResult, error) {
				captured = query
				return notifapp.ListResult{
					Notifications: []*notifdomain.Notification{
						newTestNotification(t, freelancer.UserID),
					},
					UnreadCount: 3,
					Limit:       query.Limit,
				}, nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewNotificationHandler(service))

		rec := doJSON(e, http.MethodGet, "/api/v1/notifications?unread_only=true&limit=10", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, freelancer.UserID, captured.UserID)
		assert.True(t, captured.UnreadOnly)
		assert.Equal(t, 10, captured.Limit)

		resp := decodeData[httphandler.NotificationListResponse](t, rec)
		require.Len(t, resp.Notifications, 1)
		assert.Equal(t, 3, resp.UnreadCount)
		assert.False(t, resp.Notifications[0].Read)
		assert.NotEmpty(t, resp.Notifications[0].RelatedGigID)
	})

	t.Run("defaults apply without query params", func(t *testing.T) {
		service := &stubNotificationService{
			listFn: func(_ context.Context, query notifapp.ListQuery) (notifapp.ListResult, error) {
				assert.False(t, query.UnreadOnly)
				assert.Equal(t, notifapp.DefaultListLimit, query.Limit)
				return notifapp.ListResult{}, nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewNotificationHandler(service))

		rec := doJSON(e, http.MethodGet, "/api/v1/notifications", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	freelancer := freelancerIdentity()

	t.Run("marks one as read", func(t *testing.T) {
		n := newTestNotification(t, freelancer.UserID)
		require.NoError(t, n.MarkAsRead())

		service := &stubNotificationService{
			markReadFn: func(_ context.Context, cmd notifapp.MarkReadCommand) (*notifdomain.Notification, error) {
				assert.Equal(t, n.ID(), cmd.NotificationID)
				assert.Equal(t, freelancer.UserID, cmd.ActorID)
				return n, nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewNotificationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/notifications/"+n.ID().String()+"/read", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeData[httphandler.NotificationResponse](t, rec)
		assert.True(t, resp.Read)
		assert.NotEmpty(t, resp.ReadAt)
	})

	t.Run("foreign notification is forbidden", func(t *testing.T) {
		service := &stubNotificationService{
			markReadFn: func(_ context.Context, _ notifapp.MarkReadCommand) (*notifdomain.Notification, error) {
				return nil, notifapp.ErrNotRecipient
			},
		}
		e := newTestRouter(freelancer, httphandler.NewNotificationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/notifications/"+uuid.NewUUID().String()+"/read", nil)

		assertErrorCode(t, rec, http.StatusForbidden, "NOT_RECIPIENT")
	})

	t.Run("unknown notification 404", func(t *testing.T) {
		service := &stubNotificationService{
			markReadFn: func(_ context.Context, _ notifapp.MarkReadCommand) (*notifdomain.Notification, error) {
				return nil, notifapp.ErrNotificationNotFound
			},
		}
		e := newTestRouter(freelancer, httphandler.NewNotificationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/notifications/"+uuid.NewUUID().String()+"/read", nil)

		assertErrorCode(t, rec, http.StatusNotFound, "NOTIFICATION_NOT_FOUND")
	})

	t.Run("invalid id rejected", func(t *testing.T) {
		e := newTestRouter(freelancer, httphandler.NewNotificationHandler(&stubNotificationService{}))

		rec := doJSON(e, http.MethodPost, "/api/v1/notifications/zzz/read", nil)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_NOTIFICATION_ID")
	})
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	freelancer := freelancerIdentity()

	service := &stubNotificationService{
		markAllReadFn: func(_ context.Context, userID uuid.UUID) (int, error) {
			assert.Equal(t, freelancer.UserID, userID)
			return 7, nil
		},
	}
	e := newTestRouter(freelancer, httphandler.NewNotificationHandler(service))

	rec := doJSON(e, http.MethodPost, "/api/v1/notifications/read-all", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeData[httphandler.MarkAllReadResponse](t, rec)
	assert.Equal(t, 7, resp.Marked)
}
