package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lllypuk/gigwork/internal/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	// Logger is the structured logger for router events.
	Logger *slog.Logger

	// AuthMiddleware is the authentication middleware to use for protected routes.
	AuthMiddleware echo.MiddlewareFunc

	// RateLimitMiddleware is the rate limiting middleware.
	RateLimitMiddleware echo.MiddlewareFunc

	// CORSConfig is the CORS configuration.
	CORSConfig middleware.CORSConfig

	// LoggingConfig is the logging middleware configuration.
	LoggingConfig middleware.LoggingConfig

	// RecoveryConfig is the recovery middleware configuration.
	RecoveryConfig middleware.RecoveryConfig

	// APIPrefix is the prefix for all API routes.
	// Default is "/api/v1".
	APIPrefix string
}

// DefaultRouterConfig returns a RouterConfig with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Logger:         slog.Default(),
		CORSConfig:     middleware.DefaultCORSConfig(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		RecoveryConfig: middleware.DefaultRecoveryConfig(),
		APIPrefix:      "/api/v1",
	}
}

// Router manages HTTP route groups and middleware chains. Three tiers:
// public (no token), auth (valid token, profile optional — registration
// lives here), profile (token plus a registered marketplace profile).
type Router struct {
	echo   *echo.Echo
	config RouterConfig
	logger *slog.Logger

	public  *echo.Group
	auth    *echo.Group
	profile *echo.Group
}

// NewRouter creates a new router with the given configuration.
func NewRouter(e *echo.Echo, config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.APIPrefix == "" {
		config.APIPrefix = "/api/v1"
	}

	r := &Router{
		echo:   e,
		config: config,
		logger: config.Logger,
	}

	r.setupGlobalMiddleware()
	r.setupRouteGroups()

	return r
}

// setupGlobalMiddleware applies global middleware to the Echo instance.
func (r *Router) setupGlobalMiddleware() {
	// Recovery middleware (must be first to catch all panics)
	r.echo.Use(middleware.RecoveryWithConfig(r.config.RecoveryConfig))

	// CORS middleware
	r.echo.Use(middleware.CORS(r.config.CORSConfig))

	// Logging middleware
	r.echo.Use(middleware.Logging(r.config.LoggingConfig))

	// Rate limiting middleware (if configured)
	if r.config.RateLimitMiddleware != nil {
		r.echo.Use(r.config.RateLimitMiddleware)
	}
}

// setupRouteGroups creates the route group hierarchy.
func (r *Router) setupRouteGroups() {
	// Public routes - no authentication required
	r.public = r.echo.Group(r.config.APIPrefix)

	// Authenticated routes - require a valid token
	if r.config.AuthMiddleware != nil {
		r.auth = r.public.Group("", r.config.AuthMiddleware)
	} else {
		r.auth = r.public
		r.logger.Warn("no auth middleware configured, authenticated routes are public")
	}

	// Profile routes - require a registered marketplace profile
	r.profile = r.auth.Group("", middleware.RequireProfile())
}

// Echo returns the underlying Echo instance.
func (r *Router) Echo() *echo.Echo {
	return r.echo
}

// Public returns the public route group (no authentication required).
// Use for: login, health checks, provider callbacks.
func (r *Router) Public() *echo.Group {
	return r.public
}

// Auth returns the authenticated route group (requires a valid token).
// Use for: profile registration, token refresh.
func (r *Router) Auth() *echo.Group {
	return r.auth
}

// Profile returns the profile route group (requires a registered profile).
// Use for: gigs, applications, notifications, dashboards.
func (r *Router) Profile() *echo.Group {
	return r.profile
}

// RouteBuilder provides a fluent API for building routes.
type RouteBuilder struct {
	group      *echo.Group
	middleware []echo.MiddlewareFunc
}

// NewRouteBuilder creates a new route builder for the given group.
func NewRouteBuilder(group *echo.Group) *RouteBuilder {
	return &RouteBuilder{
		group:      group,
		middleware: make([]echo.MiddlewareFunc, 0),
	}
}

// Use adds middleware to the route builder.
func (rb *RouteBuilder) Use(middleware ...echo.MiddlewareFunc) *RouteBuilder {
	rb.middleware = append(rb.middleware, middleware...)
	return rb
}

// Group creates a sub-group with the builder's middleware.
func (rb *RouteBuilder) Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	allMiddleware := make([]echo.MiddlewareFunc, 0, len(rb.middleware)+len(m))
	allMiddleware = append(allMiddleware, rb.middleware...)
	allMiddleware = append(allMiddleware, m...)
	return rb.group.Group(prefix, allMiddleware...)
}

// GET registers a GET route with the builder's middleware.
func (rb *RouteBuilder) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return rb.group.GET(path, h, rb.combined(m)...)
}

// POST registers a POST route with the builder's middleware.
func (rb *RouteBuilder) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return rb.group.POST(path, h, rb.combined(m)...)
}

// PUT registers a PUT route with the builder's middleware.
func (rb *RouteBuilder) PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return rb.group.PUT(path, h, rb.combined(m)...)
}

// PATCH registers a PATCH route with the builder's middleware.
func (rb *RouteBuilder) PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return rb.group.PATCH(path, h, rb.combined(m)...)
}

// DELETE registers a DELETE route with the builder's middleware.
func (rb *RouteBuilder) DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return rb.group.DELETE(path, h, rb.combined(m)...)
}

func (rb *RouteBuilder) combined(m []echo.MiddlewareFunc) []echo.MiddlewareFunc {
	allMiddleware := make([]echo.MiddlewareFunc, 0, len(rb.middleware)+len(m))
	allMiddleware = append(allMiddleware, rb.middleware...)
	allMiddleware = append(allMiddleware, m...)
	return allMiddleware
}

// RouteRegistrar defines the interface for registering routes.
type RouteRegistrar interface {
	RegisterRoutes(r *Router)
}

// RegisterAll registers all route registrars with the router.
func (r *Router) RegisterAll(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r)
	}
}

// ProfileRouteGroup provides a convenient way to register profile-scoped
// routes with role gates.
type ProfileRouteGroup struct {
	group  *echo.Group
	router *Router
}

// NewProfileRouteGroup creates a new profile route group with additional path prefix.
func (r *Router) NewProfileRouteGroup(prefix string, m ...echo.MiddlewareFunc) *ProfileRouteGroup {
	return &ProfileRouteGroup{
		group:  r.profile.Group(prefix, m...),
		router: r,
	}
}

// Group returns the underlying echo group.
func (prg *ProfileRouteGroup) Group() *echo.Group {
	return prg.group
}

// GET registers a GET route.
func (prg *ProfileRouteGroup) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return prg.group.GET(path, h, m...)
}

// POST registers a POST route.
func (prg *ProfileRouteGroup) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return prg.group.POST(path, h, m...)
}

// PUT registers a PUT route.
func (prg *ProfileRouteGroup) PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return prg.group.PUT(path, h, m...)
}

// PATCH registers a PATCH route.
func (prg *ProfileRouteGroup) PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return prg.group.PATCH(path, h, m...)
}

// DELETE registers a DELETE route.
func (prg *ProfileRouteGroup) DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return prg.group.DELETE(path, h, m...)
}

// RequireRole adds a role requirement to the routes in the group. Role
// checks run server-side; hiding a button in the UI is not enforcement.
func (prg *ProfileRouteGroup) RequireRole(roles ...string) *ProfileRouteGroup {
	return &ProfileRouteGroup{
		group:  prg.group.Group("", middleware.RequireRole(roles...)),
		router: prg.router,
	}
}

// PrintRoutes logs all registered routes (for debugging).
func (r *Router) PrintRoutes() {
	for _, route := range r.echo.Routes() {
		r.logger.Debug("registered route",
			slog.String("method", route.Method),
			slog.String("path", route.Path),
			slog.String("name", route.Name),
		)
	}
}

// RegisterMetricsEndpoint registers the Prometheus metrics endpoint.
func (r *Router) RegisterMetricsEndpoint() {
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
