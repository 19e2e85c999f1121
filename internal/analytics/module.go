// Package analytics provides the lead source analytics module.
package analytics

import (
	"leadnest/internal/analytics/handler"
	"leadnest/internal/analytics/repository"
	"leadnest/internal/analytics/service"
	apphttp "leadnest/internal/http"
	"leadnest/platform/db"
)

// Module is the analytics module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the analytics repository, service and handler.
func NewModule(pool db.Pool) *Module {
	return &Module{handler: handler.New(service.New(repository.New(pool)))}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterRoutes mounts analytics routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant.Group("/analytics"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
