// Package businesses provides the business profile and team module.
package businesses

import (
	"leadnest/internal/adapters/storage"
	"leadnest/internal/businesses/handler"
	"leadnest/internal/businesses/repository"
	"leadnest/internal/businesses/service"
	apphttp "leadnest/internal/http"
	"leadnest/platform/db"
	"leadnest/platform/logger"
	"leadnest/platform/validator"
)

// Module is the businesses bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	withLogo bool
}

// NewModule wires the module. store is nil when object storage is disabled,
// in which case the logo route is not mounted.
func NewModule(pool db.Pool, store *storage.MinIOService, maxFileSize int64, val *validator.Validator, log *logger.Logger) *Module {
	var objects storage.ObjectStore
	if store != nil {
		objects = store
	}
	svc := service.New(repository.New(pool), objects, log)

	return &Module{
		handler:  handler.New(svc, val, maxFileSize),
		withLogo: store != nil,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "businesses"
}

// RegisterRoutes mounts business routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant.Group("/businesses"), m.withLogo)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
