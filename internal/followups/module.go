package followups

import (
	"leadnest/internal/email"
	apphttp "leadnest/internal/http"
	"leadnest/platform/config"
	"leadnest/platform/db"
	"leadnest/platform/logger"
)

// Module is the follow-up module implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule loads the follow-up rules and wires the sweep.
func NewModule(pool db.Pool, notifier Notifier, sender email.Sender, cfg config.FollowupConfig, appBaseURL string, log *logger.Logger) (*Module, error) {
	rules, err := LoadRules(cfg.GetFollowupRulesFile())
	if err != nil {
		return nil, err
	}
	svc := New(NewRepository(pool), notifier, sender, rules, appBaseURL, log)
	return &Module{service: svc, handler: NewHandler(svc)}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "followups"
}

// Service returns the sweep for the scheduler process.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the cron-triggered sweep.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Cron)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
