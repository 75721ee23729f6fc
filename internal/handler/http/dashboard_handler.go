package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/gigwork/internal/application/dashboard"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// DashboardService defines the summary operations the handler needs.
// Declared on the consumer side per project guidelines.
type DashboardService interface {
	ClientSummary(ctx context.Context, userID uuid.UUID) (dashboard.ClientSummary, error)
	FreelancerSummary(ctx context.Context, userID uuid.UUID) (dashboard.FreelancerSummary, error)
}

// DashboardHandler serves the role-specific dashboard summaries.
type DashboardHandler struct {
	dashboards DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboards DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// RegisterRoutes registers dashboard routes with the router. Each summary
// is gated to its role; admins can read both.
func (h *DashboardHandler) RegisterRoutes(r *httpserver.Router) {
	dashboards := r.NewProfileRouteGroup("/dashboard")

	dashboards.RequireRole(string(userdomain.RoleClient), string(userdomain.RoleAdmin)).
		GET("/client", h.Client)
	dashboards.RequireRole(string(userdomain.RoleFreelancer), string(userdomain.RoleAdmin)).
		GET("/freelancer", h.Freelancer)
}

// Client handles GET /api/v1/dashboard/client.
func (h *DashboardHandler) Client(c echo.Context) error {
	userID := middleware.GetUserID(c)

	summary, err := h.dashboards.ClientSummary(c.Request().Context(), userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, summary)
}

// Freelancer handles GET /api/v1/dashboard/freelancer.
func (h *DashboardHandler) Freelancer(c echo.Context) error {
	userID := middleware.GetUserID(c)

	summary, err := h.dashboards.FreelancerSummary(c.Request().Context(), userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, summary)
}
