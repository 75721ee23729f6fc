package httphandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	notifapp "github.com/lllypuk/gigwork/internal/application/notification"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// NotificationResponse represents a notification in API responses.
type NotificationResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	RelatedGigID string `json:"related_gig_id,omitempty"`
	Read         bool   `json:"read"`
	ReadAt       string `json:"read_at,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// NotificationListResponse is a page of the user's inbox.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
	Offset        int                    `json:"offset"`
	Limit         int                    `json:"limit"`
}

// MarkAllReadResponse reports how many notifications were marked.
type MarkAllReadResponse struct {
	Marked int `json:"marked"`
}

// NotificationService defines the inbox operations the handler needs.
// Declared on the consumer side per project guidelines.
type NotificationService interface {
	List(ctx context.Context, query notifapp.ListQuery) (notifapp.ListResult, error)
	MarkRead(ctx context.Context, cmd notifapp.MarkReadCommand) (*notifdomain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationHandler handles inbox HTTP requests.
type NotificationHandler struct {
	notifications NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes registers notification routes with the router.
func (h *NotificationHandler) RegisterRoutes(r *httpserver.Router) {
	notifs := r.NewProfileRouteGroup("/notifications")

	notifs.GET("", h.List)
	notifs.POST("/:id/read", h.MarkRead)
	notifs.POST("/read-all", h.MarkAllRead)
}

// List handles GET /api/v1/notifications.
// Supported filters: unread_only, offset, limit.
func (h *NotificationHandler) List(c echo.Context) error {
	userID := middleware.GetUserID(c)

	query := notifapp.ListQuery{
		UserID:     userID,
		UnreadOnly: c.QueryParam("unread_only") == "true",
		Offset:     parseIntParam(c.QueryParam("offset"), 0),
		Limit:      parseIntParam(c.QueryParam("limit"), notifapp.DefaultListLimit),
	}

	result, err := h.notifications.List(c.Request().Context(), query)
	if err != nil {
		return handleNotificationError(c, err)
	}

	resp := NotificationListResponse{
		Notifications: make([]NotificationResponse, 0, len(result.Notifications)),
		UnreadCount:   result.UnreadCount,
		Offset:        result.Offset,
		Limit:         result.Limit,
	}
	for _, n := range result.Notifications {
		resp.Notifications = append(resp.Notifications, ToNotificationResponse(n))
	}

	return httpserver.RespondOK(c, resp)
}

// MarkRead handles POST /api/v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID := middleware.GetUserID(c)

	notificationID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_NOTIFICATION_ID", "invalid notification ID format")
	}

	cmd := notifapp.MarkReadCommand{
		NotificationID: notificationID,
		ActorID:        userID,
	}

	n, err := h.notifications.MarkRead(c.Request().Context(), cmd)
	if err != nil {
		return handleNotificationError(c, err)
	}

	return httpserver.RespondOK(c, ToNotificationResponse(n))
}

// MarkAllRead handles POST /api/v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID := middleware.GetUserID(c)

	marked, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return handleNotificationError(c, err)
	}

	return httpserver.RespondOK(c, MarkAllReadResponse{Marked: marked})
}

// Helper functions

func handleNotificationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, notifapp.ErrNotificationNotFound):
		return httpserver.RespondErrorWithCode(
			c, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "notification not found")
	case errors.Is(err, notifapp.ErrNotRecipient):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "NOT_RECIPIENT", "notification belongs to another user")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToNotificationResponse converts a domain Notification to NotificationResponse.
func ToNotificationResponse(n *notifdomain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID().String(),
		Type:      string(n.Type()),
		Title:     n.Title(),
		Message:   n.Message(),
		Read:      n.IsRead(),
		CreatedAt: n.CreatedAt().Format(time.RFC3339),
	}
	if !n.RelatedGigID().IsZero() {
		resp.RelatedGigID = n.RelatedGigID().String()
	}
	if readAt := n.ReadAt(); readAt != nil {
		resp.ReadAt = readAt.Format(time.RFC3339)
	}
	return resp
}
