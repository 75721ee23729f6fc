package httphandler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/infrastructure/oidc"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// State cookie parameters for the authorization-code flow.
const (
	stateCookieName   = "gigwork_state"
	stateCookieMaxAge = 300 // 5 minutes
	stateRandomBytes  = 16
)

// Default TTL for stored refresh tokens when the provider does not report one.
const defaultRefreshTokenTTL = 30 * 24 * time.Hour

// Auth handler errors.
var (
	ErrStateMismatch        = errors.New("state parameter does not match")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
)

// CallbackRequest is the request body for completing the code flow.
type CallbackRequest struct {
	Code        string `json:"code"`
	State       string `json:"state"`
	RedirectURI string `json:"redirect_uri"`
}

// RefreshRequest is the request body for refreshing an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPairResponse carries tokens back to the client.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// IdentityResponse describes the authenticated identity and whether a
// marketplace profile exists for it yet.
type IdentityResponse struct {
	ExternalID  string `json:"external_id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Registered  bool   `json:"registered"`
	UserID      string `json:"user_id,omitempty"`
	Role        string `json:"role,omitempty"`
}

// TokenExchanger talks to the identity provider's token endpoint.
// Declared on the consumer side per project guidelines.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*oidc.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*oidc.TokenResponse, error)
	RevokeToken(ctx context.Context, refreshToken string) error
	AuthorizationURL(redirectURI, state string) string
}

// RefreshTokenStore persists refresh tokens server-side so logout can
// revoke them.
type RefreshTokenStore interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)
	DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error
}

// AuthHandler handles the authorization-code flow against the identity
// provider. Token validation itself happens in the auth middleware; this
// handler only exchanges, refreshes and revokes tokens.
type AuthHandler struct {
	tokens TokenExchanger
	store  RefreshTokenStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(tokens TokenExchanger, store RefreshTokenStore) *AuthHandler {
	return &AuthHandler{tokens: tokens, store: store}
}

// RegisterRoutes registers auth routes with the router.
func (h *AuthHandler) RegisterRoutes(r *httpserver.Router) {
	r.Public().GET("/auth/login", h.Login)
	r.Public().POST("/auth/callback", h.Callback)

	// The auth middleware accepts expired tokens on the refresh path only.
	r.Auth().POST("/auth/refresh", h.Refresh)
	r.Auth().POST("/auth/logout", h.Logout)
	r.Auth().GET("/auth/me", h.Me)
}

// Login handles GET /api/v1/auth/login.
// Redirects to the identity provider's authorization endpoint with a
// freshly generated state bound to a cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	redirectURI := c.QueryParam("redirect_uri")
	if redirectURI == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "redirect_uri is required")
	}

	state, err := generateState()
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	setStateCookie(c, state)

	return c.Redirect(http.StatusFound, h.tokens.AuthorizationURL(redirectURI, state))
}

// Callback handles POST /api/v1/auth/callback.
// Exchanges the authorization code for tokens. The state must match the
// cookie set by Login.
func (h *AuthHandler) Callback(c echo.Context) error {
	var req CallbackRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if req.Code == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "code is required")
	}
	if req.State == "" || req.State != getStateCookie(c) {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "STATE_MISMATCH", ErrStateMismatch.Error())
	}
	clearStateCookie(c)

	tokens, err := h.tokens.ExchangeCode(c.Request().Context(), req.Code, req.RedirectURI)
	if err != nil {
		return handleAuthError(c, err)
	}

	return httpserver.RespondOK(c, toTokenPairResponse(tokens))
}

// Refresh handles POST /api/v1/auth/refresh.
// Rotates the token pair. If the caller has a registered profile, the new
// refresh token replaces the stored one.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}
	if req.RefreshToken == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", ErrRefreshTokenRequired.Error())
	}

	tokens, err := h.tokens.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return handleAuthError(c, err)
	}

	if userID := middleware.GetUserID(c); !userID.IsZero() && tokens.RefreshToken != "" {
		ttl := defaultRefreshTokenTTL
		if tokens.RefreshExpiresIn > 0 {
			ttl = time.Duration(tokens.RefreshExpiresIn) * time.Second
		}
		// Best effort: the rotated pair is already on its way to the client.
		_ = h.store.StoreRefreshToken(c.Request().Context(), userID, tokens.RefreshToken, ttl)
	}

	return httpserver.RespondOK(c, toTokenPairResponse(tokens))
}

// Logout handles POST /api/v1/auth/logout.
// Revokes the stored refresh token at the provider and forgets it.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		return httpserver.RespondNoContent(c)
	}

	ctx := c.Request().Context()
	if token, err := h.store.GetRefreshToken(ctx, userID); err == nil && token != "" {
		if revokeErr := h.tokens.RevokeToken(ctx, token); revokeErr != nil {
			return handleAuthError(c, revokeErr)
		}
	}
	if err := h.store.DeleteRefreshToken(ctx, userID); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}

// Me handles GET /api/v1/auth/me.
// Reports the token identity and whether a profile is registered, so the
// client knows whether to show the registration screen.
func (h *AuthHandler) Me(c echo.Context) error {
	externalID := middleware.GetExternalUserID(c)
	if externalID == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	resp := IdentityResponse{
		ExternalID:  externalID,
		Email:       middleware.GetEmail(c),
		DisplayName: middleware.GetDisplayName(c),
	}
	if userID := middleware.GetUserID(c); !userID.IsZero() {
		resp.Registered = true
		resp.UserID = userID.String()
		resp.Role = middleware.GetRole(c)
	}

	return httpserver.RespondOK(c, resp)
}

// Helper functions

func toTokenPairResponse(tokens *oidc.TokenResponse) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	}
}

func handleAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, oidc.ErrTokenExchangeFailed):
		return httpserver.RespondErrorWithCode(
			c, http.StatusUnauthorized, "CODE_EXCHANGE_FAILED", "authorization code was rejected")
	case errors.Is(err, oidc.ErrTokenRefreshFailed):
		return httpserver.RespondErrorWithCode(
			c, http.StatusUnauthorized, "REFRESH_FAILED", "refresh token is invalid or expired")
	case errors.Is(err, oidc.ErrTokenRevokeFailed):
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadGateway, "REVOKE_FAILED", "identity provider rejected the revocation")
	default:
		return httpserver.RespondError(c, err)
	}
}

func generateState() (string, error) {
	buf := make([]byte, stateRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func setStateCookie(c echo.Context, state string) {
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

func getStateCookie(c echo.Context) string {
	cookie, err := c.Cookie(stateCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func clearStateCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
