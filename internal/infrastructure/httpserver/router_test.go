package httpserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
)

// fakeAuth simulates the auth middleware by injecting a fixed identity.
func fakeAuth(userID uuid.UUID, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func doRequest(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_Defaults(t *testing.T) {
	e := echo.New()
	router := httpserver.NewRouter(e, httpserver.DefaultRouterConfig())

	require.NotNil(t, router)
	assert.Same(t, e, router.Echo())
	require.NotNil(t, router.Public())
	require.NotNil(t, router.Auth())
	require.NotNil(t, router.Profile())
}

func TestRouter_PublicRoutesSkipAuth(t *testing.T) {
	e := echo.New()
	config := httpserver.DefaultRouterConfig()
	config.AuthMiddleware = func(echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return c.NoContent(http.StatusUnauthorized)
		}
	}
	router := httpserver.NewRouter(e, config)

	router.Public().GET("/auth/login", okHandler)
	router.Auth().GET("/users/me", okHandler)

	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/api/v1/auth/login").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(e, http.MethodGet, "/api/v1/users/me").Code)
}

func TestRouter_ProfileGroupRequiresProfile(t *testing.T) {
	t.Run("registered profile passes", func(t *testing.T) {
		e := echo.New()
		config := httpserver.DefaultRouterConfig()
		config.AuthMiddleware = fakeAuth(uuid.NewUUID(), string(userdomain.RoleClient))
		router := httpserver.NewRouter(e, config)

		router.Profile().GET("/gigs", okHandler)

		assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/api/v1/gigs").Code)
	})

	t.Run("token without profile rejected", func(t *testing.T) {
		e := echo.New()
		config := httpserver.DefaultRouterConfig()
		config.AuthMiddleware = fakeAuth(uuid.UUID(""), "")
		router := httpserver.NewRouter(e, config)

		router.Profile().GET("/gigs", okHandler)

		assert.Equal(t, http.StatusUnauthorized, doRequest(e, http.MethodGet, "/api/v1/gigs").Code)
	})
}

func TestProfileRouteGroup_RequireRole(t *testing.T) {
	setup := func(role string) *echo.Echo {
		e := echo.New()
		config := httpserver.DefaultRouterConfig()
		config.AuthMiddleware = fakeAuth(uuid.NewUUID(), role)
		router := httpserver.NewRouter(e, config)

		gigs := router.NewProfileRouteGroup("/gigs")
		gigs.GET("", okHandler)
		gigs.RequireRole(string(userdomain.RoleClient), string(userdomain.RoleAdmin)).
			POST("", okHandler)
		return e
	}

	t.Run("client can create", func(t *testing.T) {
		e := setup(string(userdomain.RoleClient))
		assert.Equal(t, http.StatusOK, doRequest(e, http.MethodPost, "/api/v1/gigs").Code)
	})

	t.Run("admin can create", func(t *testing.T) {
		e := setup(string(userdomain.RoleAdmin))
		assert.Equal(t, http.StatusOK, doRequest(e, http.MethodPost, "/api/v1/gigs").Code)
	})

	t.Run("freelancer cannot create but can list", func(t *testing.T) {
		e := setup(string(userdomain.RoleFreelancer))
		assert.Equal(t, http.StatusForbidden, doRequest(e, http.MethodPost, "/api/v1/gigs").Code)
		assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/api/v1/gigs").Code)
	})
}

func TestRouter_HealthEndpoints(t *testing.T) {
	e := echo.New()
	router := httpserver.NewRouter(e, httpserver.DefaultRouterConfig())

	ready := true
	router.RegisterHealthEndpointsSimple(func(_ context.Context) bool { return ready })

	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/ready").Code)

	ready = false
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(e, http.MethodGet, "/ready").Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	e := echo.New()
	router := httpserver.NewRouter(e, httpserver.DefaultRouterConfig())

	router.RegisterMetricsEndpoint()

	rec := doRequest(e, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouteBuilder(t *testing.T) {
	e := echo.New()
	router := httpserver.NewRouter(e, httpserver.DefaultRouterConfig())

	var order []string
	tag := func(name string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	builder := httpserver.NewRouteBuilder(router.Public()).Use(tag("base"))
	builder.GET("/things", okHandler, tag("route"))

	rec := doRequest(e, http.MethodGet, "/api/v1/things")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"base", "route"}, order)
}
