// Package oidc validates access tokens issued by an OpenID Connect
// provider and exchanges credentials at its token endpoint. Validation is
// offline against the provider's JWKS, refreshed in the background.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Token validation errors.
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidClaims   = errors.New("invalid claims")
	ErrMissingSubject  = errors.New("missing subject claim")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")
)

// TokenClaims represents validated claims from the identity provider.
type TokenClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Username      string `json:"preferred_username"`
	Name          string `json:"name"`
	Roles         []string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// TokenValidator validates provider-issued JWTs.
type TokenValidator interface {
	// Validate validates the token and returns its claims.
	Validate(ctx context.Context, tokenString string) (*TokenClaims, error)

	// Close stops background JWKS refresh.
	Close() error
}

// ValidatorConfig contains configuration for the token validator.
type ValidatorConfig struct {
	// IssuerURL is the provider's issuer identifier, e.g.
	// https://id.example.com/realms/gigwork.
	IssuerURL string

	// JWKSURL is the key-set endpoint. Defaults to the Keycloak realm
	// layout under IssuerURL; set it explicitly for other providers.
	JWKSURL string

	// Audience is the expected audience claim. Empty disables the check.
	Audience string

	// Leeway is the clock skew tolerance.
	Leeway time.Duration

	// RefreshInterval is the JWKS refresh interval.
	RefreshInterval time.Duration

	Logger *slog.Logger
}

// Default configuration values.
const (
	DefaultLeeway          = 30 * time.Second
	DefaultRefreshInterval = 1 * time.Hour
)

// tokenValidator implements TokenValidator using JWKS for offline
// validation.
type tokenValidator struct {
	jwks   keyfunc.Keyfunc
	config ValidatorConfig
	logger *slog.Logger
	cancel context.CancelFunc
}

// NewTokenValidator creates a validator with JWKS caching.
func NewTokenValidator(config ValidatorConfig) (TokenValidator, error) {
	if config.IssuerURL == "" {
		return nil, fmt.Errorf("%w: IssuerURL is required", ErrJWKSFetchFailed)
	}

	config.IssuerURL = strings.TrimSuffix(config.IssuerURL, "/")
	if config.JWKSURL == "" {
		config.JWKSURL = config.IssuerURL + "/protocol/openid-connect/certs"
	}
	if config.Leeway == 0 {
		config.Leeway = DefaultLeeway
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("initializing token validator",
		slog.String("jwks_url", config.JWKSURL),
		slog.Duration("refresh_interval", config.RefreshInterval),
	)

	// Context controlling the background refresh goroutine
	ctx, cancel := context.WithCancel(context.Background())

	storageOpts := jwkset.HTTPClientStorageOptions{
		Ctx:             ctx,
		RefreshInterval: config.RefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("failed to refresh JWKS", slog.Any("error", err))
		},
	}

	storage, err := jwkset.NewStorageFromHTTP(config.JWKSURL, storageOpts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)
	}

	jwks, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: storage,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)
	}

	return &tokenValidator{
		jwks:   jwks,
		config: config,
		logger: logger,
		cancel: cancel,
	}, nil
}

// Validate validates the token and returns its claims.
func (v *tokenValidator) Validate(_ context.Context, tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithLeeway(v.config.Leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.config.IssuerURL),
	}
	if v.config.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.config.Audience))
	}

	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, fmt.Errorf("%w: %w", ErrInvalidIssuer, err)
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, fmt.Errorf("%w: %w", ErrInvalidAudience, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return extractClaims(claims)
}

// extractClaims extracts TokenClaims from raw JWT claims.
func extractClaims(claims jwt.MapClaims) (*TokenClaims, error) {
	tc := &TokenClaims{}

	tc.Subject, _ = claims["sub"].(string)
	if tc.Subject == "" {
		return nil, ErrMissingSubject
	}

	tc.Email, _ = claims["email"].(string)
	tc.EmailVerified, _ = claims["email_verified"].(bool)
	tc.Username, _ = claims["preferred_username"].(string)
	tc.Name, _ = claims["name"].(string)

	tc.Roles = extractRoles(claims)

	if iat, ok := claims["iat"].(float64); ok {
		tc.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		tc.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return tc, nil
}

// extractRoles reads roles from a top-level "roles" claim, falling back to
// the Keycloak realm_access.roles layout.
func extractRoles(claims jwt.MapClaims) []string {
	if roles := stringSlice(claims["roles"]); roles != nil {
		return roles
	}
	if realmAccess, ok := claims["realm_access"].(map[string]any); ok {
		return stringSlice(realmAccess["roles"])
	}
	return nil
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, sok := item.(string); sok {
			out = append(out, s)
		}
	}
	return out
}

// Close stops background JWKS refresh.
func (v *tokenValidator) Close() error {
	v.logger.Info("closing token validator")
	if v.cancel != nil {
		v.cancel()
	}
	return nil
}
