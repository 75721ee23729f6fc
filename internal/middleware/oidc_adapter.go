package middleware

import (
	"context"
	"errors"
	"fmt"

	appuser "github.com/lllypuk/gigwork/internal/application/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/oidc"
)

// OIDCTokenValidatorAdapter adapts the infrastructure token validator to the
// middleware TokenValidator interface.
type OIDCTokenValidatorAdapter struct {
	validator oidc.TokenValidator
}

// NewOIDCTokenValidatorAdapter creates an adapter around the provider
// validator.
func NewOIDCTokenValidatorAdapter(validator oidc.TokenValidator) *OIDCTokenValidatorAdapter {
	return &OIDCTokenValidatorAdapter{validator: validator}
}

// ValidateToken validates the token and maps claims and errors into the
// middleware's types.
func (a *OIDCTokenValidatorAdapter) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := a.validator.Validate(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, oidc.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	return &TokenClaims{
		ExternalUserID: claims.Subject,
		Email:          claims.Email,
		DisplayName:    displayName(claims),
		ExpiresAt:      claims.ExpiresAt,
	}, nil
}

// displayName picks the best available name from provider claims.
func displayName(claims *oidc.TokenClaims) string {
	if claims.Name != "" {
		return claims.Name
	}
	return claims.Username
}

// UserResolverAdapter adapts the user lookup use case to the middleware
// UserResolver interface.
type UserResolverAdapter struct {
	users *appuser.GetUserUseCase
}

// NewUserResolverAdapter creates an adapter around the user use case.
func NewUserResolverAdapter(users *appuser.GetUserUseCase) *UserResolverAdapter {
	return &UserResolverAdapter{users: users}
}

// ResolveUser maps the identity-provider subject to the internal profile.
func (a *UserResolverAdapter) ResolveUser(ctx context.Context, externalID string) (uuid.UUID, string, error) {
	u, err := a.users.ResolveByExternalID(ctx, externalID)
	if err != nil {
		switch {
		case errors.Is(err, appuser.ErrUserNotFound):
			return uuid.UUID(""), "", ErrUserNotFound
		case errors.Is(err, appuser.ErrUserInactive):
			return uuid.UUID(""), "", ErrUserInactive
		default:
			return uuid.UUID(""), "", fmt.Errorf("resolve user: %w", err)
		}
	}

	return u.ID(), string(u.Role()), nil
}

var (
	_ TokenValidator = (*OIDCTokenValidatorAdapter)(nil)
	_ UserResolver   = (*UserResolverAdapter)(nil)
)
