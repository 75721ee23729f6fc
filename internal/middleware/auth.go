// Package middleware provides the Echo middleware stack: bearer-token
// authentication, role gates, rate limiting, CORS, request logging and
// panic recovery.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Context keys for authentication data.
type contextKey string

const (
	// ContextKeyUserID is the context key for the internal user ID.
	ContextKeyUserID contextKey = "user_id"

	// ContextKeyExternalUserID is the context key for the identity
	// provider's subject.
	ContextKeyExternalUserID contextKey = "external_user_id"

	// ContextKeyEmail is the context key for user email.
	ContextKeyEmail contextKey = "email"

	// ContextKeyDisplayName is the context key for the display name.
	ContextKeyDisplayName contextKey = "display_name"

	// ContextKeyRole is the context key for the marketplace role.
	ContextKeyRole contextKey = "role"
)

// Auth errors.
var (
	ErrMissingAuthHeader       = errors.New("missing authorization header")
	ErrInvalidAuthHeader       = errors.New("invalid authorization header format")
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token expired")
	ErrUserNotFound            = errors.New("user not found")
	ErrUserInactive            = errors.New("user is deactivated")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// TokenClaims represents the claims extracted from a validated JWT.
type TokenClaims struct {
	// UserID is the internal user ID, set after profile resolution.
	UserID uuid.UUID

	// ExternalUserID is the subject from the identity provider.
	ExternalUserID string

	// Email is the user's email address.
	Email string

	// DisplayName is the user's display name.
	DisplayName string

	// Role is the marketplace role of the resolved profile.
	Role string

	// ExpiresAt is the token expiration time.
	ExpiresAt time.Time
}

// TokenValidator defines the interface for validating JWT tokens.
type TokenValidator interface {
	// ValidateToken validates a JWT token and returns the claims.
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// UserResolver maps an identity-provider subject to the internal profile.
type UserResolver interface {
	// ResolveUser returns the internal user ID and role for externalID.
	ResolveUser(ctx context.Context, externalID string) (uuid.UUID, string, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Logger is the structured logger for auth events.
	Logger *slog.Logger

	// TokenValidator validates JWT tokens.
	TokenValidator TokenValidator

	// UserResolver resolves profiles from external IDs. Optional; when nil
	// only the token claims are set in context. Registration runs without
	// a profile, so resolution failure with ErrUserNotFound does not block
	// the request.
	UserResolver UserResolver

	// SkipPaths are paths that don't require authentication.
	SkipPaths []string

	// AllowExpiredForPaths allows expired tokens for specific paths
	// (the refresh endpoint).
	AllowExpiredForPaths []string
}

// DefaultAuthConfig returns an AuthConfig with sensible defaults.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Logger:               slog.Default(),
		SkipPaths:            []string{"/health", "/ready", "/api/v1/auth/login"},
		AllowExpiredForPaths: []string{"/api/v1/auth/refresh"},
	}
}

// Auth returns an authentication middleware with the given configuration.
func Auth(config AuthConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	allowExpiredPaths := make(map[string]struct{}, len(config.AllowExpiredForPaths))
	for _, path := range config.AllowExpiredForPaths {
		allowExpiredPaths[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if _, ok := skipPaths[path]; ok {
				return next(c)
			}

			token, tokenErr := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if tokenErr != nil {
				return respondAuthError(c, tokenErr)
			}

			if config.TokenValidator == nil {
				config.Logger.Error("token validator not configured")
				return respondAuthError(c, ErrInvalidToken)
			}

			claims, validateErr := config.TokenValidator.ValidateToken(c.Request().Context(), token)
			if validateErr != nil {
				if errors.Is(validateErr, ErrTokenExpired) && claims != nil {
					if _, ok := allowExpiredPaths[path]; ok {
						enrichContext(c, claims)
						return next(c)
					}
				}

				config.Logger.Warn("token validation failed",
					slog.String("error", validateErr.Error()),
					slog.String("path", path),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondAuthError(c, validateErr)
			}

			if config.UserResolver != nil && claims.UserID.IsZero() {
				userID, role, resolveErr := config.UserResolver.ResolveUser(
					c.Request().Context(),
					claims.ExternalUserID,
				)
				switch {
				case resolveErr == nil:
					claims.UserID = userID
					claims.Role = role
				case errors.Is(resolveErr, ErrUserNotFound):
					// first call: the register endpoint creates the profile
				case errors.Is(resolveErr, ErrUserInactive):
					return respondAuthError(c, ErrUserInactive)
				default:
					config.Logger.Error("failed to resolve user",
						slog.String("error", resolveErr.Error()),
						slog.String("external_id", claims.ExternalUserID),
					)
					return respondAuthError(c, ErrUserNotFound)
				}
			}

			enrichContext(c, claims)

			config.Logger.Debug("user authenticated",
				slog.String("user_id", claims.UserID.String()),
				slog.String("external_id", claims.ExternalUserID),
				slog.String("path", path),
			)

			return next(c)
		}
	}
}

// extractBearerToken extracts the token from a Bearer authorization header.
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrInvalidAuthHeader
	}

	return token, nil
}

// enrichContext adds user information to the echo context.
func enrichContext(c echo.Context, claims *TokenClaims) {
	c.Set(string(ContextKeyUserID), claims.UserID)
	c.Set(string(ContextKeyExternalUserID), claims.ExternalUserID)
	c.Set(string(ContextKeyEmail), claims.Email)
	c.Set(string(ContextKeyDisplayName), claims.DisplayName)
	c.Set(string(ContextKeyRole), claims.Role)
}

// respondAuthError sends an authentication error response.
func respondAuthError(c echo.Context, err error) error {
	code := "UNAUTHORIZED"
	message := "Authentication required"
	status := http.StatusUnauthorized

	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		message = "Missing authorization header"
	case errors.Is(err, ErrInvalidAuthHeader):
		message = "Invalid authorization header format"
	case errors.Is(err, ErrTokenExpired):
		message = "Token has expired"
		code = "TOKEN_EXPIRED"
	case errors.Is(err, ErrInvalidToken):
		message = "Invalid token"
	case errors.Is(err, ErrUserNotFound):
		message = "User not found"
		code = "USER_NOT_FOUND"
	case errors.Is(err, ErrUserInactive):
		message = "User account is deactivated"
		code = "USER_INACTIVE"
		status = http.StatusForbidden
	case errors.Is(err, ErrInsufficientPermissions):
		message = "Insufficient permissions"
		code = "FORBIDDEN"
		status = http.StatusForbidden
	}

	return c.JSON(status, map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// GetUserID extracts the internal user ID from the echo context.
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(string(ContextKeyUserID)).(uuid.UUID); ok {
		return id
	}
	return uuid.UUID("")
}

// GetExternalUserID extracts the identity-provider subject from the context.
func GetExternalUserID(c echo.Context) string {
	if id, ok := c.Get(string(ContextKeyExternalUserID)).(string); ok {
		return id
	}
	return ""
}

// GetEmail extracts the email from the echo context.
func GetEmail(c echo.Context) string {
	if email, ok := c.Get(string(ContextKeyEmail)).(string); ok {
		return email
	}
	return ""
}

// GetDisplayName extracts the display name from the echo context.
func GetDisplayName(c echo.Context) string {
	if name, ok := c.Get(string(ContextKeyDisplayName)).(string); ok {
		return name
	}
	return ""
}

// GetRole extracts the marketplace role from the echo context.
func GetRole(c echo.Context) string {
	if role, ok := c.Get(string(ContextKeyRole)).(string); ok {
		return role
	}
	return ""
}

// HasAnyRole checks if the current user has any of the given roles.
func HasAnyRole(c echo.Context, roles ...string) bool {
	current := GetRole(c)
	if current == "" {
		return false
	}
	for _, role := range roles {
		if current == role {
			return true
		}
	}
	return false
}

// RequireRole returns a middleware that allows only the listed roles. The
// check is server-side enforcement, not a UI hint.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !HasAnyRole(c, roles...) {
				return respondAuthError(c, ErrInsufficientPermissions)
			}
			return next(c)
		}
	}
}

// RequireProfile returns a middleware that rejects requests whose token
// validated but whose profile was never registered.
func RequireProfile() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetUserID(c).IsZero() {
				return respondAuthError(c, ErrUserNotFound)
			}
			return next(c)
		}
	}
}

// StaticTokenValidator is a simple token validator for development and
// tests. Tokens look like "dev-token-<external_id>".
// DO NOT USE IN PRODUCTION - use proper JWT validation instead.
type StaticTokenValidator struct{}

// NewStaticTokenValidator creates a new static token validator.
func NewStaticTokenValidator() *StaticTokenValidator {
	return &StaticTokenValidator{}
}

// ValidateToken accepts only the development token format.
func (v *StaticTokenValidator) ValidateToken(_ context.Context, token string) (*TokenClaims, error) {
	const (
		devTokenPrefix          = "dev-token-"
		devTokenExpirationHours = 24
	)

	externalID, ok := strings.CutPrefix(token, devTokenPrefix)
	if !ok || externalID == "" {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		ExternalUserID: externalID,
		DisplayName:    "dev-user-" + externalID,
		Email:          "dev-" + externalID + "@example.com",
		ExpiresAt:      time.Now().Add(devTokenExpirationHours * time.Hour),
	}, nil
}
