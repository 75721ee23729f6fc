package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Token endpoint errors.
var (
	ErrTokenExchangeFailed = errors.New("failed to exchange authorization code")
	ErrTokenRefreshFailed  = errors.New("failed to refresh token")
	ErrTokenRevokeFailed   = errors.New("failed to revoke token")
	ErrUserInfoFailed      = errors.New("failed to get user info")
	ErrInvalidResponse     = errors.New("invalid response from identity provider")
)

// TokenResponse represents the OAuth2 token response.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
	IDToken          string `json:"id_token,omitempty"`
	Scope            string `json:"scope,omitempty"`
}

// UserInfo represents the response from the userinfo endpoint.
type UserInfo struct {
	Sub               string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
}

// TokenClientConfig contains configuration for TokenClient. Endpoint URLs
// default to the Keycloak realm layout under IssuerURL; set them
// explicitly for other providers.
type TokenClientConfig struct {
	IssuerURL    string
	TokenURL     string
	UserInfoURL  string
	RevokeURL    string
	AuthorizeURL string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// TokenClient talks to the identity provider's OAuth2 endpoints: code
// exchange at login, refresh, revocation at logout.
type TokenClient struct {
	config     TokenClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

const defaultHTTPTimeout = 30 * time.Second

// NewTokenClient creates a token endpoint client.
func NewTokenClient(cfg TokenClientConfig) *TokenClient {
	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	cfg.IssuerURL = issuer
	if cfg.TokenURL == "" {
		cfg.TokenURL = issuer + "/protocol/openid-connect/token"
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = issuer + "/protocol/openid-connect/userinfo"
	}
	if cfg.RevokeURL == "" {
		cfg.RevokeURL = issuer + "/protocol/openid-connect/revoke"
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = issuer + "/protocol/openid-connect/auth"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenClient{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// ExchangeCode exchanges an authorization code for access and refresh
// tokens.
func (c *TokenClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)
	data.Set("client_id", c.config.ClientID)
	data.Set("client_secret", c.config.ClientSecret)

	return c.postTokenRequest(ctx, data, ErrTokenExchangeFailed)
}

// RefreshToken refreshes an access token using a refresh token.
func (c *TokenClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", c.config.ClientID)
	data.Set("client_secret", c.config.ClientSecret)

	return c.postTokenRequest(ctx, data, ErrTokenRefreshFailed)
}

func (c *TokenClient) postTokenRequest(
	ctx context.Context,
	data url.Values,
	sentinel error,
) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sentinel, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sentinel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "token request failed",
			slog.String("grant_type", data.Get("grant_type")),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, fmt.Errorf("%w: status %d", sentinel, resp.StatusCode)
	}

	var tokenResp TokenResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&tokenResp); decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, decodeErr)
	}

	return &tokenResp, nil
}

// RevokeToken revokes a refresh token at the provider. Revoking an
// already-revoked token is not an error.
func (c *TokenClient) RevokeToken(ctx context.Context, refreshToken string) error {
	data := url.Values{}
	data.Set("token", refreshToken)
	data.Set("token_type_hint", "refresh_token")
	data.Set("client_id", c.config.ClientID)
	data.Set("client_secret", c.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.RevokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenRevokeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenRevokeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "token revocation failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return fmt.Errorf("%w: status %d", ErrTokenRevokeFailed, resp.StatusCode)
	}

	return nil
}

// GetUserInfo retrieves user information using an access token.
func (c *TokenClient) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserInfoFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserInfoFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "get user info failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUserInfoFailed, resp.StatusCode)
	}

	var userInfo UserInfo
	if decodeErr := json.NewDecoder(resp.Body).Decode(&userInfo); decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, decodeErr)
	}

	return &userInfo, nil
}

// AuthorizationURL generates the provider's authorization URL for the
// OAuth2 login redirect.
func (c *TokenClient) AuthorizationURL(redirectURI, state string) string {
	params := url.Values{}
	params.Set("client_id", c.config.ClientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "openid profile email")
	params.Set("state", state)

	return c.config.AuthorizeURL + "?" + params.Encode()
}
