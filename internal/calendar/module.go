// Package calendar provides calendar events and the booked-lead materializer.
package calendar

import (
	"leadnest/internal/calendar/handler"
	"leadnest/internal/calendar/repository"
	"leadnest/internal/calendar/service"
	"leadnest/internal/events"
	apphttp "leadnest/internal/http"
	"leadnest/platform/db"
	"leadnest/platform/logger"
)

// Module is the calendar module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the calendar module. reminders may be nil when Redis is
// not configured; events are then created without a reminder task.
func NewModule(pool db.Pool, reminders service.ReminderScheduler, eventBus events.Bus, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), reminders, eventBus, log)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calendar"
}

// RegisterRoutes mounts calendar routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant.Group("/calendar"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
