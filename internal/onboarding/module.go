// Package onboarding provides the onboarding wizard module.
package onboarding

import (
	apphttp "leadnest/internal/http"
	"leadnest/internal/onboarding/handler"
	"leadnest/internal/onboarding/repository"
	"leadnest/internal/onboarding/service"
	"leadnest/platform/db"
	"leadnest/platform/validator"
)

// Module is the onboarding module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool db.Pool, val *validator.Validator) *Module {
	return &Module{handler: handler.New(service.New(repository.New(pool)), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "onboarding"
}

// RegisterRoutes mounts onboarding routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant.Group("/onboarding"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
