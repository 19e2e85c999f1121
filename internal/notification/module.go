// Package notification reacts to domain events with emails and in-app
// notifications, and serves the notification inbox.
package notification

import (
	"context"
	"fmt"

	"leadnest/internal/email"
	"leadnest/internal/events"
	apphttp "leadnest/internal/http"
	notifhandler "leadnest/internal/notification/handler"
	"leadnest/internal/notification/inapp"
	"leadnest/internal/notification/sse"
	"leadnest/platform/db"
	"leadnest/platform/logger"
)

const statusBooked = "booked"

// Module is the notification module implementing http.Module and
// events.Handler.
type Module struct {
	sender       email.Sender
	log          *logger.Logger
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
}

// New creates a new notification module.
func New(pool db.Pool, sender email.Sender, log *logger.Logger) *Module {
	sseSvc := sse.New(log)
	inAppSvc := inapp.NewService(inapp.NewRepository(pool), sseSvc, log)

	return &Module{
		sender:       sender,
		log:          log,
		inAppService: inAppSvc,
		inAppHandler: notifhandler.NewHTTPHandler(inAppSvc, sseSvc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// InApp returns the in-app notification service for other producers such as
// the follow-up sweep.
func (m *Module) InApp() *inapp.Service {
	return m.inAppService
}

// RegisterRoutes mounts the notification inbox routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.inAppHandler.RegisterRoutes(ctx.Tenant.Group("/notifications"))
}

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.PasswordResetRequested{}.EventName(), m)
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.PasswordResetRequested:
		return m.handlePasswordResetRequested(ctx, e)
	case events.LeadCreated:
		return m.handleLeadCreated(ctx, e)
	case events.LeadStatusChanged:
		return m.handleLeadStatusChanged(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handlePasswordResetRequested(ctx context.Context, e events.PasswordResetRequested) error {
	if err := m.sender.SendPasswordResetEmail(ctx, e.Email, e.ResetURL); err != nil {
		m.log.WithContext(ctx).Error("failed to send password reset email", "email", e.Email, "error", err)
		return err
	}
	m.log.WithContext(ctx).Info("password reset email sent", "email", e.Email)
	return nil
}

// Leads entered by a team member are not announced back to the team.
func (m *Module) handleLeadCreated(ctx context.Context, e events.LeadCreated) error {
	if e.CreatedBy != nil {
		return nil
	}

	leadID := e.LeadID
	_, err := m.inAppService.NotifyOwners(ctx, inapp.SendParams{
		BusinessID: e.BusinessID,
		Title:      "New lead",
		Message:    fmt.Sprintf("%s submitted a request via %s", e.Name, e.Source),
		Type:       inapp.TypeInfo,
		LeadID:     &leadID,
	})
	return err
}

func (m *Module) handleLeadStatusChanged(ctx context.Context, e events.LeadStatusChanged) error {
	if e.NewStatus != statusBooked {
		return nil
	}

	leadID := e.LeadID
	_, err := m.inAppService.NotifyOwners(ctx, inapp.SendParams{
		BusinessID: e.BusinessID,
		Title:      "Lead booked",
		Message:    fmt.Sprintf("%s is booked. Create the calendar event to schedule the appointment.", e.LeadName),
		Type:       inapp.TypeSuccess,
		LeadID:     &leadID,
	})
	return err
}

// Compile-time checks
var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
