package httphandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	userapp "github.com/lllypuk/gigwork/internal/application/user"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// Validation constants for user requests.
const (
	maxDisplayNameLength = 100
	maxUserSkillCount    = 30
)

// User handler errors.
var (
	ErrDisplayNameEmpty   = errors.New("display name cannot be empty")
	ErrDisplayNameTooLong = errors.New("display name is too long")
)

// RegisterRequest is the request body for creating a marketplace profile.
// Identity fields come from the token; the caller only picks a role and
// may override the display name.
type RegisterRequest struct {
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// UpdateProfileRequest is the request body for editing a profile.
type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name"`
	Skills      []string `json:"skills"`
}

// UserResponse represents a profile in API responses.
type UserResponse struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	DisplayName   string   `json:"display_name"`
	Role          string   `json:"role"`
	Skills        []string `json:"skills,omitempty"`
	Rating        float64  `json:"rating"`
	CompletedGigs int      `json:"completed_gigs"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// UserService defines the profile operations the handler needs.
// Declared on the consumer side per project guidelines.
type UserService interface {
	Register(ctx context.Context, cmd userapp.RegisterUserCommand) (userapp.Result, error)
	GetUser(ctx context.Context, userID uuid.UUID) (userapp.Result, error)
	UpdateProfile(ctx context.Context, cmd userapp.UpdateProfileCommand) (userapp.Result, error)
}

// UserHandler handles profile-related HTTP requests.
type UserHandler struct {
	users UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes registers user routes with the router. Registration only
// needs a valid token; everything else needs the profile it creates.
func (h *UserHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().POST("/users/register", h.Register)

	r.Profile().GET("/users/me", h.GetMe)
	r.Profile().PUT("/users/me", h.UpdateMe)
	r.Profile().GET("/users/:id", h.Get)
}

// Register handles POST /api/v1/users/register.
// Creates a profile for the authenticated identity. The role is fixed here
// and can never be changed afterwards.
func (h *UserHandler) Register(c echo.Context) error {
	externalID := middleware.GetExternalUserID(c)
	if externalID == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	var req RegisterRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	role := userdomain.Role(req.Role)
	if !userdomain.ValidRole(role) || role == userdomain.RoleAdmin {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ROLE", "role must be job_poster or freelancer")
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = middleware.GetDisplayName(c)
	}
	if len(displayName) > maxDisplayNameLength {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrDisplayNameTooLong.Error())
	}

	cmd := userapp.RegisterUserCommand{
		ExternalID:  externalID,
		Email:       middleware.GetEmail(c),
		DisplayName: displayName,
		Role:        role,
	}

	result, err := h.users.Register(c.Request().Context(), cmd)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondCreated(c, ToUserResponse(result.Value))
}

// GetMe handles GET /api/v1/users/me.
func (h *UserHandler) GetMe(c echo.Context) error {
	userID := middleware.GetUserID(c)

	result, err := h.users.GetUser(c.Request().Context(), userID)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.Value))
}

// UpdateMe handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req UpdateProfileRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if valErr := validateUpdateProfileRequest(&req); valErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	}

	cmd := userapp.UpdateProfileCommand{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Skills:      req.Skills,
	}

	result, err := h.users.UpdateProfile(c.Request().Context(), cmd)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.Value))
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	userID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	result, err := h.users.GetUser(c.Request().Context(), userID)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.Value))
}

// Helper functions

func validateUpdateProfileRequest(req *UpdateProfileRequest) error {
	if req.DisplayName == nil && req.Skills == nil {
		return errors.New("at least one field must be provided")
	}

	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			return ErrDisplayNameEmpty
		}
		if len(*req.DisplayName) > maxDisplayNameLength {
			return ErrDisplayNameTooLong
		}
	}
	if len(req.Skills) > maxUserSkillCount {
		return errors.New("too many skills")
	}

	return nil
}

func handleUserError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, userapp.ErrUserNotFound):
		return httpserver.RespondErrorWithCode(
			c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, userapp.ErrUserAlreadyExists):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "USER_EXISTS", "profile is already registered")
	case errors.Is(err, userapp.ErrUserInactive):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "USER_INACTIVE", "profile is deactivated")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToUserResponse converts a domain User to UserResponse.
func ToUserResponse(u *userdomain.User) UserResponse {
	return UserResponse{
		ID:            u.ID().String(),
		Email:         u.Email(),
		DisplayName:   u.DisplayName(),
		Role:          string(u.Role()),
		Skills:        u.Skills(),
		Rating:        u.Rating(),
		CompletedGigs: u.CompletedGigs(),
		CreatedAt:     u.CreatedAt().Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt().Format(time.RFC3339),
	}
}
