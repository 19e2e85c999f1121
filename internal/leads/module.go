// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"fmt"

	"leadnest/internal/events"
	apphttp "leadnest/internal/http"
	"leadnest/internal/leads/domain"
	"leadnest/internal/leads/handler"
	"leadnest/internal/leads/management"
	"leadnest/internal/leads/notes"
	"leadnest/internal/leads/repository"
	"leadnest/platform/config"
	"leadnest/platform/db"
	"leadnest/platform/httpkit"
	"leadnest/platform/logger"
	"leadnest/platform/phone"
	"leadnest/platform/validator"

	"golang.org/x/time/rate"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	notesHandler  *handler.NotesHandler
	publicHandler *handler.PublicHandler
	publicLimiter *httpkit.IPRateLimiter
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool db.Pool, eventBus events.Bus, val *validator.Validator, cfg config.PhoneConfig, log *logger.Logger) (*Module, error) {
	if err := domain.RegisterValidation(val); err != nil {
		return nil, fmt.Errorf("register lead status validation: %w", err)
	}

	repo := repository.New(pool)

	// Create focused services (vertical slices)
	mgmtSvc := management.New(repo, eventBus, phone.NewNormalizer(cfg.GetPhoneDefaultRegion()), log)
	notesSvc := notes.New(repo)

	return &Module{
		handler:       handler.New(mgmtSvc, val),
		notesHandler:  handler.NewNotesHandler(notesSvc, val),
		publicHandler: handler.NewPublicHandler(mgmtSvc, val),
		publicLimiter: httpkit.NewIPRateLimiter(rate.Limit(30.0/60.0), 10, log),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.Tenant.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
	m.notesHandler.RegisterRoutes(leadsGroup)

	publicGroup := ctx.API.Group("/public/leads")
	publicGroup.Use(m.publicLimiter.RateLimit())
	m.publicHandler.RegisterRoutes(publicGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
