// Package httphandler contains the JSON API handlers. Handlers bind and
// validate requests, delegate to application use cases and translate
// application errors into HTTP responses.
package httphandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	gigapp "github.com/lllypuk/gigwork/internal/application/gig"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// Validation constants for gig requests.
const (
	maxGigTitleLength       = 200
	maxGigDescriptionLength = 5000
	maxSkillCount           = 20
	defaultGigListLimit     = 20
	maxGigListLimit         = 100
)

// CreateGigRequest is the request body for posting a gig.
type CreateGigRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Budget      float64   `json:"budget"`
	Deadline    time.Time `json:"deadline"`
	Skills      []string  `json:"skills"`
}

// ChangeStatusRequest is the request body for advancing a gig's lifecycle.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// UpdateProgressRequest is the request body for reporting progress.
type UpdateProgressRequest struct {
	Progress int `json:"progress"`
}

// AddMilestoneRequest is the request body for appending a milestone.
type AddMilestoneRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
}

// MilestoneResponse represents a milestone in API responses.
type MilestoneResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	DueDate     time.Time `json:"due_date"`
}

// GigResponse represents a gig in API responses.
type GigResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	Priority    string              `json:"priority"`
	PosterID    string              `json:"poster_id"`
	AssignedTo  string              `json:"assigned_to,omitempty"`
	Budget      float64             `json:"budget"`
	Deadline    time.Time           `json:"deadline"`
	Skills      []string            `json:"skills,omitempty"`
	Progress    int                 `json:"progress"`
	Milestones  []MilestoneResponse `json:"milestones,omitempty"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

// GigListResponse is a page of gigs.
type GigListResponse struct {
	Gigs       []GigResponse `json:"gigs"`
	TotalCount int           `json:"total_count"`
	Offset     int           `json:"offset"`
	Limit      int           `json:"limit"`
}

// GigService defines the gig operations the handler needs.
// Declared on the consumer side per project guidelines.
type GigService interface {
	CreateGig(ctx context.Context, cmd gigapp.CreateGigCommand) (gigapp.Result, error)
	GetGig(ctx context.Context, gigID uuid.UUID) (gigapp.Result, error)
	ListGigs(ctx context.Context, query gigapp.ListGigsQuery) (gigapp.ListResult, error)
	ChangeStatus(ctx context.Context, cmd gigapp.ChangeStatusCommand) (gigapp.Result, error)
	UpdateProgress(ctx context.Context, cmd gigapp.UpdateProgressCommand) (gigapp.Result, error)
	AddMilestone(ctx context.Context, cmd gigapp.AddMilestoneCommand) (gigapp.Result, error)
	CompleteMilestone(ctx context.Context, cmd gigapp.CompleteMilestoneCommand) (gigapp.Result, error)
}

// GigHandler handles gig-related HTTP requests.
type GigHandler struct {
	gigs GigService
}

// NewGigHandler creates a new GigHandler.
func NewGigHandler(gigs GigService) *GigHandler {
	return &GigHandler{gigs: gigs}
}

// RegisterRoutes registers gig routes with the router. Posting a gig is
// restricted to clients; everything else is gated inside the use cases.
func (h *GigHandler) RegisterRoutes(r *httpserver.Router) {
	gigs := r.NewProfileRouteGroup("/gigs")

	gigs.GET("", h.List)
	gigs.GET("/:id", h.Get)
	gigs.POST("/:id/status", h.ChangeStatus)
	gigs.POST("/:id/progress", h.UpdateProgress)
	gigs.POST("/:id/milestones", h.AddMilestone)
	gigs.POST("/:id/milestones/:milestone_id/complete", h.CompleteMilestone)

	gigs.RequireRole(string(userdomain.RoleClient), string(userdomain.RoleAdmin)).
		POST("", h.Create)
}

// Create handles POST /api/v1/gigs.
func (h *GigHandler) Create(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateGigRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if valErr := validateCreateGigRequest(&req); valErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	}

	cmd := gigapp.CreateGigCommand{
		PosterID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    gigdomain.Priority(req.Priority),
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		Skills:      req.Skills,
	}

	result, err := h.gigs.CreateGig(c.Request().Context(), cmd)
	if err != nil {
		return handleGigError(c, err)
	}

	return httpserver.RespondCreated(c, ToGigResponse(result.Value))
}

// Get handles GET /api/v1/gigs/:id.
func (h *GigHandler) Get(c echo.Context) error {
	gigID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_GIG_ID", "invalid gig ID format")
	}

	result, err := h.gigs.GetGig(c.Request().Context(), gigID)
	if err != nil {
		return handleGigError(c, err)
	}

	return httpserver.RespondOK(c, ToGigResponse(result.Value))
}

// List handles GET /api/v1/gigs.
// Supported filters: status, mine=posted|assigned, offset, limit.
func (h *GigHandler) List(c echo.Context) error {
	userID := middleware.GetUserID(c)

	query := gigapp.ListGigsQuery{
		Offset: parseIntParam(c.QueryParam("offset"), 0),
		Limit:  parseIntParam(c.QueryParam("limit"), defaultGigListLimit),
	}
	if query.Limit > maxGigListLimit {
		query.Limit = maxGigListLimit
	}

	if status := c.QueryParam("status"); status != "" {
		if !gigdomain.ValidStatus(gigdomain.Status(status)) {
			return httpserver.RespondErrorWithCode(
				c, http.StatusBadRequest, "INVALID_STATUS", "unknown gig status")
		}
		query.Status = gigdomain.Status(status)
	}

	switch mine := c.QueryParam("mine"); mine {
	case "":
	case "posted":
		query.PosterID = userID
	case "assigned":
		query.AssignedTo = userID
	default:
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_FILTER", "mine must be 'posted' or 'assigned'")
	}

	result, err := h.gigs.ListGigs(c.Request().Context(), query)
	if err != nil {
		return handleGigError(c, err)
	}

	resp := GigListResponse{
		Gigs:       make([]GigResponse, 0, len(result.Gigs)),
		TotalCount: result.TotalCount,
		Offset:     result.Offset,
		Limit:      result.Limit,
	}
	for _, g := range result.Gigs {
		resp.Gigs = append(resp.Gigs, ToGigResponse(g))
	}

	return httpserver.RespondOK(c, resp)
}

// ChangeStatus handles POST /api/v1/gigs/:id/status.
func (h *GigHandler) ChangeStatus(c echo.Context) error {
	userID := middleware.GetUserID(c)

	gigID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_GIG_ID", "invalid gig ID format")
	}

	var req ChangeStatusRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if !gigdomain.ValidStatus(gigdomain.Status(req.Status)) {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_STATUS", "unknown gig status")
	}

	cmd := gigapp.ChangeStatusCommand{
		GigID:     gigID,
		ActorID:   userID,
		NewStatus: gigdomain.Status(req.Status),
	}

	result, err := h.gigs.ChangeStatus(c.Request().Context(), cmd)
	if err != nil {
		return handleGigError(c, err)
	}

	return httpserver.RespondOK(c, ToGigResponse(result.Value))
}

// UpdateProgress handles POST /api/v1/gigs/:id/progress.
func (h *GigHandler) UpdateProgress(c echo.Context) error {
	userID := middleware.GetUserID(c)

	gigID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_GIG_ID", "invalid gig ID format")
	}

	var req UpdateProgressRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if req.Progress < gigdomain.MinProgress || req.Progress > gigdomain.MaxProgress {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_PROGRESS", "progress must be between 0 and 100")
	}

	cmd := gigapp.UpdateProgressCommand{
		GigID:    gigID,
		ActorID:  userID,
		Progress: req.Progress,
	}

	result, err := h.gigs.UpdateProgress(c.Request().Context(), cmd)
	if err != nil {
		return handleGigError(c, err)
	}

	return httpserver.RespondOK(c, ToGigResponse(result.Value))
}

// AddMilestone handles POST /api/v1/gigs/:id/milestones.
func (h *GigHandler) AddMilestone(c echo.Context) error {
	userID := middleware.GetUserID(c)

	gigID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_GIG_ID", "invalid gig ID format")
	}

	var req AddMilestoneRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if req.Title == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", "milestone title is required")
	}
	if req.DueDate.IsZero() {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", "milestone due date is required")
	}

	cmd := gigapp.AddMilestoneCommand{
		GigID:       gigID,
		ActorID:     userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}

	result, err := h.gigs.AddMilestone(c.Request().Context(), cmd)
	if err != nil {
		return handleGigError(c, err)
	}

	return httpserver.RespondCreated(c, ToGigResponse(result.Value))
}

// CompleteMilestone handles POST /api/v1/gigs/:id/milestones/:milestone_id/complete.
func (h *GigHandler) CompleteMilestone(c echo.Context) error {
	userID := middleware.GetUserID(c)

	gigID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_GIG_ID", "invalid gig ID format")
	}
	milestoneID, parseErr := uuid.ParseUUID(c.Param("milestone_id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_MILESTONE_ID", "invalid milestone ID format")
	}

	cmd := gigapp.CompleteMilestoneCommand{
		GigID:       gigID,
		ActorID:     userID,
		MilestoneID: milestoneID,
	}

	result, err := h.gigs.CompleteMilestone(c.Request().Context(), cmd)
	if err != nil {
		return handleGigError(c, err)
	}

	return httpserver.RespondOK(c, ToGigResponse(result.Value))
}

// Helper functions

func validateCreateGigRequest(req *CreateGigRequest) error {
	if req.Title == "" {
		return errors.New("title is required")
	}
	if len(req.Title) > maxGigTitleLength {
		return errors.New("title is too long")
	}
	if len(req.Description) > maxGigDescriptionLength {
		return errors.New("description is too long")
	}
	if !gigdomain.ValidPriority(gigdomain.Priority(req.Priority)) {
		return errors.New("priority must be low, medium or high")
	}
	if req.Budget <= 0 {
		return errors.New("budget must be positive")
	}
	if req.Deadline.IsZero() {
		return errors.New("deadline is required")
	}
	if len(req.Skills) > maxSkillCount {
		return errors.New("too many skills")
	}
	return nil
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func handleGigError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gigapp.ErrGigNotFound):
		return httpserver.RespondErrorWithCode(
			c, http.StatusNotFound, "GIG_NOT_FOUND", "gig not found")
	case errors.Is(err, gigapp.ErrNotGigPoster):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "NOT_GIG_POSTER", "only the gig poster can do this")
	case errors.Is(err, gigapp.ErrNotGigAssignee):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "NOT_GIG_ASSIGNEE", "only the assigned freelancer can do this")
	case errors.Is(err, gigapp.ErrNotAClient):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "NOT_A_CLIENT", "only clients can post gigs")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToGigResponse converts a domain Gig to GigResponse.
func ToGigResponse(g *gigdomain.Gig) GigResponse {
	resp := GigResponse{
		ID:          g.ID().String(),
		Title:       g.Title(),
		Description: g.Description(),
		Status:      string(g.Status()),
		Priority:    string(g.Priority()),
		PosterID:    g.PosterID().String(),
		Budget:      g.Budget(),
		Deadline:    g.Deadline(),
		Skills:      g.Skills(),
		Progress:    g.Progress(),
		CreatedAt:   g.CreatedAt().Format(time.RFC3339),
		UpdatedAt:   g.UpdatedAt().Format(time.RFC3339),
	}
	if assignee := g.AssignedTo(); assignee != nil {
		resp.AssignedTo = assignee.String()
	}
	for _, m := range g.Milestones() {
		resp.Milestones = append(resp.Milestones, MilestoneResponse{
			ID:          m.ID.String(),
			Title:       m.Title,
			Description: m.Description,
			Completed:   m.Completed,
			DueDate:     m.DueDate,
		})
	}
	return resp
}
