// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"placefinder/platform/config"
	"placefinder/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.LogConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration.
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (e.g. Redis ping); nil means
	// there is nothing to check.
	Health HealthChecker
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
