// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadnest/platform/events"
	"leadnest/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus shared by all modules.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Auth Domain Events
// =============================================================================

// BusinessCreated is published after signup commits the user, business and
// owner relation.
type BusinessCreated struct {
	BaseEvent
	BusinessID uuid.UUID `json:"businessId"`
	OwnerID    uuid.UUID `json:"ownerId"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
}

func (e BusinessCreated) EventName() string { return "auth.business.created" }

// PasswordResetRequested is published when a reset token has been stored and
// the email should go out.
type PasswordResetRequested struct {
	BaseEvent
	Email      string `json:"email"`
	ResetToken string `json:"resetToken"`
	ResetURL   string `json:"resetUrl"`
}

func (e PasswordResetRequested) EventName() string { return "auth.password.reset_requested" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID      uuid.UUID  `json:"leadId"`
	BusinessID  uuid.UUID  `json:"businessId"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty"`
	Name        string     `json:"name"`
	ServiceType string     `json:"serviceType"`
	Source      string     `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published for every lead whose status was set,
// including each lead of a bulk update.
type LeadStatusChanged struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	BusinessID uuid.UUID  `json:"businessId"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
	LeadName   string     `json:"leadName"`
	NewStatus  string     `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// =============================================================================
// Calendar Domain Events
// =============================================================================

// CalendarEventCreated is published when an event row was inserted.
type CalendarEventCreated struct {
	BaseEvent
	EventID    uuid.UUID  `json:"eventId"`
	BusinessID uuid.UUID  `json:"businessId"`
	LeadID     *uuid.UUID `json:"leadId,omitempty"`
	Title      string     `json:"title"`
	StartTime  time.Time  `json:"startTime"`
}

func (e CalendarEventCreated) EventName() string { return "calendar.event.created" }
