package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
	httphandler "github.com/lllypuk/gigwork/internal/handler/http"
	"github.com/lllypuk/gigwork/internal/infrastructure/oidc"
)

type stubTokenExchanger struct {
	exchangeFn func(ctx context.Context, code, redirectURI string) (*oidc.TokenResponse, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*oidc.TokenResponse, error)
	revokeFn   func(ctx context.Context, refreshToken string) error
	authURLFn  func(redirectURI, state string) string
}

func (s *stubTokenExchanger) ExchangeCode(ctx context.Context, code, redirectURI string) (*oidc.TokenResponse, error) {
	return s.exchangeFn(ctx, code, redirectURI)
}

func (s *stubTokenExchanger) RefreshToken(ctx context.Context, refreshToken string) (*oidc.TokenResponse, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubTokenExchanger) RevokeToken(ctx context.Context, refreshToken string) error {
	return s.revokeFn(ctx, refreshToken)
}

func (s *stubTokenExchanger) AuthorizationURL(redirectURI, state string) string {
	return s.authURLFn(redirectURI, state)
}

// memoryTokenStore is an in-memory RefreshTokenStore for tests.
type memoryTokenStore struct {
	tokens map[uuid.UUID]string
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[uuid.UUID]string)}
}

func (m *memoryTokenStore) StoreRefreshToken(_ context.Context, userID uuid.UUID, token string, _ time.Duration) error {
	m.tokens[userID] = token
	return nil
}

func (m *memoryTokenStore) GetRefreshToken(_ context.Context, userID uuid.UUID) (string, error) {
	return m.tokens[userID], nil
}

func (m *memoryTokenStore) DeleteRefreshToken(_ context.Context, userID uuid.UUID) error {
	delete(m.tokens, userID)
	return nil
}

func tokenPair(access, refresh string) *oidc.TokenResponse {
	return &oidc.TokenResponse{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        300,
		RefreshExpiresIn: 1800,
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("redirects with state cookie", func(t *testing.T) {
		exchanger := &stubTokenExchanger{
			authURLFn: func(redirectURI, state string) string {
				assert.Equal(t, "https://app.example.com/cb", redirectURI)
				assert.NotEmpty(t, state)
				return "https://idp.example.com/auth?state=" + state
			},
		}
		e := newTestRouter(identity{}, httphandler.NewAuthHandler(exchanger, newMemoryTokenStore()))

		rec := doJSON(e, http.MethodGet, "/api/v1/auth/login?redirect_uri=https://app.example.com/cb", nil)

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "https://idp.example.com/auth?state=")

		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		var found bool
		for _, c := range cookies {
			if c.Name == "gigwork_state" {
				found = true
				assert.NotEmpty(t, c.Value)
				assert.True(t, c.HttpOnly)
			}
		}
		assert.True(t, found, "state cookie not set")
	})

	t.Run("missing redirect_uri rejected", func(t *testing.T) {
		e := newTestRouter(identity{}, httphandler.NewAuthHandler(&stubTokenExchanger{}, newMemoryTokenStore()))

		rec := doJSON(e, http.MethodGet, "/api/v1/auth/login", nil)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
	})
}

func TestAuthHandler_Callback(t *testing.T) {
	postCallback := func(e *echo.Echo, body map[string]string, cookie *http.Cookie) *httptest.ResponseRecorder {
		data, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", bytes.NewReader(data))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("exchanges the code", func(t *testing.T) {
		exchanger := &stubTokenExchanger{
			exchangeFn: func(_ context.Context, code, redirectURI string) (*oidc.TokenResponse, error) {
				assert.Equal(t, "auth-code", code)
				assert.Equal(t, "https://app.example.com/cb", redirectURI)
				return tokenPair("access-1", "refresh-1"), nil
			},
		}
		e := newTestRouter(identity{}, httphandler.NewAuthHandler(exchanger, newMemoryTokenStore()))

		rec := postCallback(e, map[string]string{
			"code":         "auth-code",
			"state":        "state-123",
			"redirect_uri": "https://app.example.com/cb",
		}, &http.Cookie{Name: "gigwork_state", Value: "state-123"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeData[httphandler.TokenPairResponse](t, rec)
		assert.Equal(t, "access-1", resp.AccessToken)
		assert.Equal(t, "refresh-1", resp.RefreshToken)
		assert.Equal(t, 300, resp.ExpiresIn)
	})

	t.Run("state mismatch rejected", func(t *testing.T) {
		e := newTestRouter(identity{}, httphandler.NewAuthHandler(&stubTokenExchanger{}, newMemoryTokenStore()))

		rec := postCallback(e, map[string]string{
			"code":  "auth-code",
			"state": "state-123",
		}, &http.Cookie{Name: "gigwork_state", Value: "other-state"})

		assertErrorCode(t, rec, http.StatusBadRequest, "STATE_MISMATCH")
	})

	t.Run("missing state cookie rejected", func(t *testing.T) {
		e := newTestRouter(identity{}, httphandler.NewAuthHandler(&stubTokenExchanger{}, newMemoryTokenStore()))

		rec := postCallback(e, map[string]string{
			"code":  "auth-code",
			"state": "state-123",
		}, nil)

		assertErrorCode(t, rec, http.StatusBadRequest, "STATE_MISMATCH")
	})

	t.Run("rejected code maps to 401", func(t *testing.T) {
		exchanger := &stubTokenExchanger{
			exchangeFn: func(_ context.Context, _, _ string) (*oidc.TokenResponse, error) {
				return nil, oidc.ErrTokenExchangeFailed
			},
		}
		e := newTestRouter(identity{}, httphandler.NewAuthHandler(exchanger, newMemoryTokenStore()))

		rec := postCallback(e, map[string]string{
			"code":  "bad-code",
			"state": "s",
		}, &http.Cookie{Name: "gigwork_state", Value: "s"})

		assertErrorCode(t, rec, http.StatusUnauthorized, "CODE_EXCHANGE_FAILED")
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("rotates and stores for registered profiles", func(t *testing.T) {
		freelancer := freelancerIdentity()
		store := newMemoryTokenStore()
		exchanger := &stubTokenExchanger{
			refreshFn: func(_ context.Context, refreshToken string) (*oidc.TokenResponse, error) {
				assert.Equal(t, "refresh-old", refreshToken)
				return tokenPair("access-2", "refresh-new"), nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewAuthHandler(exchanger, store))

		rec := doJSON(e, http.MethodPost, "/api/v1/auth/refresh",
			map[string]string{"refresh_token": "refresh-old"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeData[httphandler.TokenPairResponse](t, rec)
		assert.Equal(t, "access-2", resp.AccessToken)
		assert.Equal(t, "refresh-new", store.tokens[freelancer.UserID])
	})

	t.Run("works without a profile", func(t *testing.T) {
		store := newMemoryTokenStore()
		exchanger := &stubTokenExchanger{
			refreshFn: func(_ context.Context, _ string) (*oidc.TokenResponse, error) {
				return tokenPair("access-2", "refresh-new"), nil
			},
		}
		e := newTestRouter(identity{ExternalID: "ext-only"}, httphandler.NewAuthHandler(exchanger, store))

		rec := doJSON(e, http.MethodPost, "/api/v1/auth/refresh",
			map[string]string{"refresh_token": "refresh-old"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, store.tokens)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		e := newTestRouter(identity{}, httphandler.NewAuthHandler(&stubTokenExchanger{}, newMemoryTokenStore()))

		rec := doJSON(e, http.MethodPost, "/api/v1/auth/refresh", map[string]string{})

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
	})

	t.Run("expired refresh token maps to 401", func(t *testing.T) {
		exchanger := &stubTokenExchanger{
			refreshFn: func(_ context.Context, _ string) (*oidc.TokenResponse, error) {
				return nil, oidc.ErrTokenRefreshFailed
			},
		}
		e := newTestRouter(identity{}, httphandler.NewAuthHandler(exchanger, newMemoryTokenStore()))

		rec := doJSON(e, http.MethodPost, "/api/v1/auth/refresh",
			map[string]string{"refresh_token": "stale"})

		assertErrorCode(t, rec, http.StatusUnauthorized, "REFRESH_FAILED")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes and forgets the stored token", func(t *testing.T) {
		freelancer := freelancerIdentity()
		store := newMemoryTokenStore()
		store.tokens[freelancer.UserID] = "refresh-stored"

		var revoked string
		exchanger := &stubTokenExchanger{
			revokeFn: func(_ context.Context, refreshToken string) error {
				revoked = refreshToken
				return nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewAuthHandler(exchanger, store))

		rec := doJSON(e, http.MethodPost, "/api/v1/auth/logout", nil)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "refresh-stored", revoked)
		assert.Empty(t, store.tokens)
	})

	t.Run("logout without stored token is a no-op", func(t *testing.T) {
		freelancer := freelancerIdentity()
		e := newTestRouter(freelancer, httphandler.NewAuthHandler(&stubTokenExchanger{}, newMemoryTokenStore()))

		rec := doJSON(e, http.MethodPost, "/api/v1/auth/logout", nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("registered identity", func(t *testing.T) {
		freelancer := freelancerIdentity()
		e := newTestRouter(freelancer, httphandler.NewAuthHandler(&stubTokenExchanger{}, newMemoryTokenStore()))

		rec := doJSON(e, http.MethodGet, "/api/v1/auth/me", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeData[httphandler.IdentityResponse](t, rec)
		assert.True(t, resp.Registered)
		assert.Equal(t, freelancer.UserID.String(), resp.UserID)
		assert.Equal(t, freelancer.Role, resp.Role)
	})

	t.Run("identity without profile", func(t *testing.T) {
		id := identity{ExternalID: "ext-new", Email: "new@example.com"}
		e := newTestRouter(id, httphandler.NewAuthHandler(&stubTokenExchanger{}, newMemoryTokenStore()))

		rec := doJSON(e, http.MethodGet, "/api/v1/auth/me", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeData[httphandler.IdentityResponse](t, rec)
		assert.False(t, resp.Registered)
		assert.Empty(t, resp.UserID)
		assert.Equal(t, "ext-new", resp.ExternalID)
	})
}
