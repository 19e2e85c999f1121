// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"leadnest/internal/events"
	"leadnest/internal/tenant"
	"leadnest/platform/config"
	"leadnest/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.CronConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP, JWT and cron settings).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Members re-checks tenant membership on every tenant-scoped request.
	// Nil trusts the session claims alone.
	Members tenant.MembershipReader
	// Registry receives the HTTP collectors and backs /metrics. Nil disables both.
	Registry *prometheus.Registry
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
