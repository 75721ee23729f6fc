// Package main provides the API server entry point.
package main

import (
	"github.com/labstack/echo/v4"

	"github.com/lllypuk/gigwork/internal/infrastructure/httpserver"
	"github.com/lllypuk/gigwork/internal/middleware"
)

// SetupRoutes configures all API routes and middleware chains.
func SetupRoutes(c *Container) *httpserver.Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	routerConfig := httpserver.RouterConfig{
		Logger: c.Logger,
		AuthMiddleware: middleware.Auth(middleware.AuthConfig{
			Logger:         c.Logger,
			TokenValidator: c.TokenValidator,
			UserResolver:   c.UserResolver,
			SkipPaths: []string{
				"/health",
				"/ready",
				"/health/details",
				"/metrics",
				"/api/v1/auth/login",
				"/api/v1/auth/callback",
			},
			AllowExpiredForPaths: []string{
				"/api/v1/auth/refresh",
			},
		}),
		RateLimitMiddleware: middleware.RateLimit(middleware.DefaultRateLimitConfig()),
		CORSConfig:          middleware.DefaultCORSConfig(),
		LoggingConfig:       middleware.DefaultLoggingConfig(),
		RecoveryConfig:      middleware.DefaultRecoveryConfig(),
		APIPrefix:           "/api/v1",
	}

	router := httpserver.NewRouter(e, routerConfig)

	// Health endpoints use the HealthChecker interface; the container
	// implements it, so requests get proper per-component status.
	router.RegisterHealthEndpointsWithChecker(c)
	router.RegisterMetricsEndpoint()

	// JSON API routes
	router.RegisterAll(
		c.AuthHandler,
		c.UserHandler,
		c.GigHandler,
		c.ApplicationHandler,
		c.NotificationHandler,
		c.DashboardHandler,
	)

	// Live gig updates over WebSocket. The connection authenticates with
	// the same bearer token as the API.
	registerWebSocketRoutes(router, c)

	// Log all registered routes in debug mode
	if c.Config.IsDevelopment() {
		router.PrintRoutes()
	}

	return router
}

// registerWebSocketRoutes registers the WebSocket upgrade endpoint on the
// authenticated tier.
func registerWebSocketRoutes(r *httpserver.Router, c *Container) {
	r.Auth().GET("/ws", c.WSHandler.HandleWebSocket)
}
