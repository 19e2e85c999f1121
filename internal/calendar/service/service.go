// Package service materializes calendar appointments for booked leads.
package service

import (
	"context"
	"fmt"
	"time"

	"leadnest/internal/calendar/repository"
	"leadnest/internal/events"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/logger"

	"github.com/google/uuid"
)

const (
	EventTypeAppointment = "appointment"
	EventStatusScheduled = "scheduled"
	DefaultLocation      = "TBD"

	// ReminderLead is how long before the start the reminder goes out.
	ReminderLead = 24 * time.Hour

	appointmentOffsetDays = 2
	appointmentStartHour  = 10
	appointmentDuration   = time.Hour

	defaultListPast   = 7 * 24 * time.Hour
	defaultListWindow = 60 * 24 * time.Hour
	maxListWindow     = 366 * 24 * time.Hour
)

type Repository interface {
	FindBookedWithoutEvent(ctx context.Context, businessID uuid.UUID) ([]repository.BookedLead, error)
	Insert(ctx context.Context, e repository.NewEvent) (repository.Event, bool, error)
	List(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]repository.Event, error)
}

// ReminderScheduler enqueues delayed reminder jobs.
type ReminderScheduler interface {
	ScheduleEventReminder(ctx context.Context, businessID, eventID uuid.UUID, runAt time.Time) error
}

type Service struct {
	repo      Repository
	reminders ReminderScheduler
	eventBus  events.Bus
	log       *logger.Logger
	loc       *time.Location
	now       func() time.Time
}

// New creates the service. reminders may be nil when no queue is configured.
func New(repo Repository, reminders ReminderScheduler, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, reminders: reminders, eventBus: eventBus, log: log, loc: time.Local, now: time.Now}
}

// MaterializeResult lists the events created by one run.
type MaterializeResult struct {
	Created []repository.Event
}

// AppointmentSlot is the default appointment for a lead created at createdAt:
// two days later from 10:00 to 11:00 in loc.
func AppointmentSlot(createdAt time.Time, loc *time.Location) (time.Time, time.Time) {
	local := createdAt.In(loc)
	y, m, d := local.AddDate(0, 0, appointmentOffsetDays).Date()
	start := time.Date(y, m, d, appointmentStartHour, 0, 0, 0, loc)
	return start, start.Add(appointmentDuration)
}

// AutoCreateEvents creates one appointment for every booked lead of the
// caller's business that has none. Running it again creates nothing new.
func (s *Service) AutoCreateEvents(ctx context.Context, scope tenant.Scope) (MaterializeResult, error) {
	leads, err := s.repo.FindBookedWithoutEvent(ctx, scope.BusinessID)
	if err != nil {
		return MaterializeResult{}, apperr.Internal("calendar.materialize.find", err)
	}

	result := MaterializeResult{Created: make([]repository.Event, 0, len(leads))}
	for _, lead := range leads {
		leadID := lead.ID
		start, end := AppointmentSlot(lead.CreatedAt, s.loc)
		participants := []string{}
		if lead.Email != "" {
			participants = append(participants, lead.Email)
		}

		event, created, err := s.repo.Insert(ctx, repository.NewEvent{
			BusinessID:   scope.BusinessID,
			LeadID:       &leadID,
			Title:        fmt.Sprintf("Appointment with %s", lead.Name),
			Description:  fmt.Sprintf("Auto-created appointment for booked lead %s", lead.Name),
			Type:         EventTypeAppointment,
			StartTime:    start,
			EndTime:      end,
			Status:       EventStatusScheduled,
			Location:     DefaultLocation,
			Participants: participants,
			Reminders:    []repository.Reminder{{Type: "email", MinutesBefore: int(ReminderLead / time.Minute)}},
		})
		if err != nil {
			return result, apperr.Internal("calendar.materialize.insert", err)
		}
		if !created {
			continue
		}
		result.Created = append(result.Created, event)

		s.eventBus.Publish(ctx, events.CalendarEventCreated{
			BaseEvent:  events.NewBaseEvent(),
			EventID:    event.ID,
			BusinessID: event.BusinessID,
			LeadID:     event.LeadID,
			Title:      event.Title,
			StartTime:  event.StartTime,
		})
		s.scheduleReminder(ctx, event)
	}
	return result, nil
}

func (s *Service) scheduleReminder(ctx context.Context, event repository.Event) {
	if s.reminders == nil {
		return
	}
	runAt := event.StartTime.Add(-ReminderLead)
	if event.StartTime.Before(s.now()) {
		return
	}
	if err := s.reminders.ScheduleEventReminder(ctx, event.BusinessID, event.ID, runAt); err != nil {
		s.log.WithContext(ctx).Warn("failed to schedule event reminder", "error", err, "eventId", event.ID)
	}
}

// ListEvents returns the caller's events starting in [from, to). Zero bounds
// default to a window around today.
func (s *Service) ListEvents(ctx context.Context, scope tenant.Scope, from, to time.Time) ([]repository.Event, error) {
	if from.IsZero() {
		from = s.now().Add(-defaultListPast)
	}
	if to.IsZero() {
		to = from.Add(defaultListWindow)
	}
	if !to.After(from) {
		return nil, apperr.BadRequest("to must be after from")
	}
	if to.Sub(from) > maxListWindow {
		return nil, apperr.BadRequest("range may not exceed 366 days")
	}

	list, err := s.repo.List(ctx, scope.BusinessID, from, to)
	if err != nil {
		return nil, apperr.Internal("calendar.events.list", err)
	}
	return list, nil
}
