// Package main provides the activity API server entry point.
package main

import (
	"github.com/labstack/echo/v4"

	"github.com/themery/themery/internal/infrastructure/httpserver"
	"github.com/themery/themery/internal/middleware"
)

// SetupRoutes configures all API routes and middleware chains.
func SetupRoutes(c *Container) *httpserver.Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	routerConfig := httpserver.RouterConfig{
		Logger:         c.Logger,
		CORSConfig:     middleware.DefaultCORSConfig(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		RecoveryConfig: middleware.DefaultRecoveryConfig(),
		APIPrefix:      "/api/v1",
	}

	router := httpserver.NewRouter(e, routerConfig)

	router.RegisterHealthEndpointsWithChecker(c)
	router.RegisterMetricsEndpoint()

	c.ActivityHandler.RegisterRoutes(router)

	if c.Config.IsDevelopment() {
		router.PrintRoutes()
	}

	return router
}
