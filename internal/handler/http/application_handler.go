package httphandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	appusecase "github.com/lllypuk/gigwork/internal/application/application"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// Validation constants for application requests.
const (
	maxCoverLetterLength     = 3000
	defaultApplicationsLimit = 20
	maxApplicationsLimit     = 100
)

// SubmitApplicationRequest is the request body for bidding on a gig.
type SubmitApplicationRequest struct {
	GigID       string `json:"gig_id"`
	CoverLetter string `json:"cover_letter"`
}

// ApplicationResponse represents an application in API responses.
type ApplicationResponse struct {
	ID          string `json:"id"`
	GigID       string `json:"gig_id"`
	ApplicantID string `json:"applicant_id"`
	CoverLetter string `json:"cover_letter,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ApplicationListResponse is a page of applications.
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Offset       int                   `json:"offset"`
	Limit        int                   `json:"limit"`
}

// AcceptApplicationResponse reports the accept outcome, including the
// sibling applications that were auto-rejected.
type AcceptApplicationResponse struct {
	Accepted ApplicationResponse   `json:"accepted"`
	Rejected []ApplicationResponse `json:"rejected"`
}

// ApplicationService defines the application operations the handler needs.
// Declared on the consumer side per project guidelines.
type ApplicationService interface {
	Submit(ctx context.Context, cmd appusecase.SubmitApplicationCommand) (appusecase.Result, error)
	Accept(ctx context.Context, cmd appusecase.AcceptApplicationCommand) (appusecase.AcceptResult, error)
	Reject(ctx context.Context, cmd appusecase.RejectApplicationCommand) (appusecase.Result, error)
	ListByGig(ctx context.Context, query appusecase.ListByGigQuery) (appusecase.ListResult, error)
	ListByApplicant(ctx context.Context, query appusecase.ListByApplicantQuery) (appusecase.ListResult, error)
}

// ApplicationHandler handles application-related HTTP requests.
type ApplicationHandler struct {
	applications ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(applications ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// RegisterRoutes registers application routes with the router. Submitting
// is restricted to freelancers; accept/reject authorization (poster only)
// is enforced by the use cases.
func (h *ApplicationHandler) RegisterRoutes(r *httpserver.Router) {
	apps := r.NewProfileRouteGroup("/applications")

	apps.GET("/mine", h.ListMine)
	apps.POST("/:id/accept", h.Accept)
	apps.POST("/:id/reject", h.Reject)

	apps.RequireRole(string(userdomain.RoleFreelancer)).
		POST("", h.Submit)

	r.Profile().GET("/gigs/:id/applications", h.ListByGig)
}

// Submit handles POST /api/v1/applications.
func (h *ApplicationHandler) Submit(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req SubmitApplicationRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	gigID, parseErr := uuid.ParseUUID(req.GigID)
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_GIG_ID", "invalid gig ID format")
	}
	if len(req.CoverLetter) > maxCoverLetterLength {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", "cover letter is too long")
	}

	cmd := appusecase.SubmitApplicationCommand{
		GigID:       gigID,
		ApplicantID: userID,
		CoverLetter: req.CoverLetter,
	}

	result, err := h.applications.Submit(c.Request().Context(), cmd)
	if err != nil {
		return handleApplicationError(c, err)
	}

	return httpserver.RespondCreated(c, ToApplicationResponse(result.Value))
}

// Accept handles POST /api/v1/applications/:id/accept.
// Accepting assigns the gig to the applicant and auto-rejects every other
// pending application on the same gig.
func (h *ApplicationHandler) Accept(c echo.Context) error {
	userID := middleware.GetUserID(c)

	applicationID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_APPLICATION_ID", "invalid application ID format")
	}

	cmd := appusecase.AcceptApplicationCommand{
		ApplicationID: applicationID,
		ActorID:       userID,
	}

	result, err := h.applications.Accept(c.Request().Context(), cmd)
	if err != nil {
		return handleApplicationError(c, err)
	}

	resp := AcceptApplicationResponse{
		Accepted: ToApplicationResponse(result.Accepted),
		Rejected: make([]ApplicationResponse, 0, len(result.Rejected)),
	}
	for _, a := range result.Rejected {
		resp.Rejected = append(resp.Rejected, ToApplicationResponse(a))
	}

	return httpserver.RespondOK(c, resp)
}

// Reject handles POST /api/v1/applications/:id/reject.
func (h *ApplicationHandler) Reject(c echo.Context) error {
	userID := middleware.GetUserID(c)

	applicationID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_APPLICATION_ID", "invalid application ID format")
	}

	cmd := appusecase.RejectApplicationCommand{
		ApplicationID: applicationID,
		ActorID:       userID,
	}

	result, err := h.applications.Reject(c.Request().Context(), cmd)
	if err != nil {
		return handleApplicationError(c, err)
	}

	return httpserver.RespondOK(c, ToApplicationResponse(result.Value))
}

// ListByGig handles GET /api/v1/gigs/:id/applications.
// Only the gig poster sees the applications on their gig.
func (h *ApplicationHandler) ListByGig(c echo.Context) error {
	userID := middleware.GetUserID(c)

	gigID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_GIG_ID", "invalid gig ID format")
	}

	query := appusecase.ListByGigQuery{
		GigID:   gigID,
		ActorID: userID,
	}

	result, err := h.applications.ListByGig(c.Request().Context(), query)
	if err != nil {
		return handleApplicationError(c, err)
	}

	return httpserver.RespondOK(c, toApplicationListResponse(result))
}

// ListMine handles GET /api/v1/applications/mine.
func (h *ApplicationHandler) ListMine(c echo.Context) error {
	userID := middleware.GetUserID(c)

	query := appusecase.ListByApplicantQuery{
		ApplicantID: userID,
		Offset:      parseIntParam(c.QueryParam("offset"), 0),
		Limit:       parseIntParam(c.QueryParam("limit"), defaultApplicationsLimit),
	}
	if query.Limit > maxApplicationsLimit {
		query.Limit = maxApplicationsLimit
	}

	result, err := h.applications.ListByApplicant(c.Request().Context(), query)
	if err != nil {
		return handleApplicationError(c, err)
	}

	return httpserver.RespondOK(c, toApplicationListResponse(result))
}

// Helper functions

func toApplicationListResponse(result appusecase.ListResult) ApplicationListResponse {
	resp := ApplicationListResponse{
		Applications: make([]ApplicationResponse, 0, len(result.Applications)),
		Offset:       result.Offset,
		Limit:        result.Limit,
	}
	for _, a := range result.Applications {
		resp.Applications = append(resp.Applications, ToApplicationResponse(a))
	}
	return resp
}

func handleApplicationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, appusecase.ErrApplicationNotFound):
		return httpserver.RespondErrorWithCode(
			c, http.StatusNotFound, "APPLICATION_NOT_FOUND", "application not found")
	case errors.Is(err, appusecase.ErrGigNotFound):
		return httpserver.RespondErrorWithCode(
			c, http.StatusNotFound, "GIG_NOT_FOUND", "gig not found")
	case errors.Is(err, appusecase.ErrGigNotOpen):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "GIG_NOT_OPEN", "gig is not open for applications")
	case errors.Is(err, appusecase.ErrGigAlreadyAssigned):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "GIG_ALREADY_ASSIGNED", "gig was assigned to another applicant")
	case errors.Is(err, appusecase.ErrNotGigPoster):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "NOT_GIG_POSTER", "only the gig poster can do this")
	case errors.Is(err, appusecase.ErrNotAFreelancer):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "NOT_A_FREELANCER", "only freelancers can apply")
	case errors.Is(err, appusecase.ErrAlreadyResolved):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "ALREADY_RESOLVED", "application is already resolved")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToApplicationResponse converts a domain Application to ApplicationResponse.
func ToApplicationResponse(a *appdomain.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:          a.ID().String(),
		GigID:       a.GigID().String(),
		ApplicantID: a.ApplicantID().String(),
		CoverLetter: a.CoverLetter(),
		Status:      string(a.Status()),
		CreatedAt:   a.CreatedAt().Format(time.RFC3339),
	}
	if updated := a.UpdatedAt(); updated != nil {
		resp.UpdatedAt = updated.Format(time.RFC3339)
	}
	return resp
}
