package httphandler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// identity is the authenticated caller a test simulates.
type identity struct {
	UserID      uuid.UUID
	Role        string
	ExternalID  string
	Email       string
	DisplayName string
}

func clientIdentity() identity {
	return identity{
		UserID:      uuid.NewUUID(),
		Role:        string(userdomain.RoleClient),
		ExternalID:  "ext-client",
		Email:       "client@example.com",
		DisplayName: "Client",
	}
}

func freelancerIdentity() identity {
	return identity{
		UserID:      uuid.NewUUID(),
		Role:        string(userdomain.RoleFreelancer),
		ExternalID:  "ext-freelancer",
		Email:       "freelancer@example.com",
		DisplayName: "Freelancer",
	}
}

// authAs injects the identity the way the auth middleware would.
func authAs(id identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !id.UserID.IsZero() {
				c.Set(string(middleware.ContextKeyUserID), id.UserID)
				c.Set(string(middleware.ContextKeyRole), id.Role)
			}
			c.Set(string(middleware.ContextKeyExternalUserID), id.ExternalID)
			c.Set(string(middleware.ContextKeyEmail), id.Email)
			c.Set(string(middleware.ContextKeyDisplayName), id.DisplayName)
			return next(c)
		}
	}
}

// newTestRouter builds an echo instance with the handler's routes mounted
// behind a stubbed auth middleware.
func newTestRouter(id identity, registrar httpserver.RouteRegistrar) *echo.Echo {
	e := echo.New()
	config := httpserver.DefaultRouterConfig()
	config.AuthMiddleware = authAs(id)
	router := httpserver.NewRouter(e, config)
	router.RegisterAll(registrar)
	return e
}

func doJSON(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, "expected success envelope, got %s", rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, "body: %s", rec.Body.String())
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
}
