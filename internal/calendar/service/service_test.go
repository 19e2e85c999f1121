package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"leadnest/internal/calendar/repository"
	"leadnest/internal/events"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/logger"

	"github.com/google/uuid"
)

type memRepo struct {
	mu     sync.Mutex
	booked map[uuid.UUID][]repository.BookedLead
	events map[uuid.UUID]repository.Event // keyed by lead
}

func newMemRepo() *memRepo {
	return &memRepo{booked: map[uuid.UUID][]repository.BookedLead{}, events: map[uuid.UUID]repository.Event{}}
}

func (m *memRepo) FindBookedWithoutEvent(_ context.Context, businessID uuid.UUID) ([]repository.BookedLead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.BookedLead
	for _, l := range m.booked[businessID] {
		if _, ok := m.events[l.ID]; !ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memRepo) Insert(_ context.Context, e repository.NewEvent) (repository.Event, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[*e.LeadID]; ok {
		return repository.Event{}, false, nil
	}
	ev := repository.Event{
		ID: uuid.New(), BusinessID: e.BusinessID, LeadID: e.LeadID, Title: e.Title, Type: e.Type,
		StartTime: e.StartTime, EndTime: e.EndTime, Status: e.Status, Location: e.Location,
		Participants: e.Participants, Reminders: e.Reminders,
	}
	m.events[*e.LeadID] = ev
	return ev, true, nil
}

func (m *memRepo) List(_ context.Context, businessID uuid.UUID, from, to time.Time) ([]repository.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Event
	for _, e := range m.events {
		if e.BusinessID == businessID && !e.StartTime.Before(from) && e.StartTime.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type recordingScheduler struct {
	mu    sync.Mutex
	runAt map[uuid.UUID]time.Time
	err   error
}

func (r *recordingScheduler) ScheduleEventReminder(_ context.Context, _, eventID uuid.UUID, runAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runAt == nil {
		r.runAt = map[uuid.UUID]time.Time{}
	}
	r.runAt[eventID] = runAt
	return r.err
}

func newTestService(repo Repository, reminders ReminderScheduler) (*Service, *events.InMemoryBus) {
	log := logger.NewWithWriter("test", io.Discard)
	bus := events.NewInMemoryBus(log)
	svc := New(repo, reminders, bus, log)
	svc.loc = time.UTC
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	return svc, bus
}

func TestAppointmentSlotUsesLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	createdAt := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	start, end := AppointmentSlot(createdAt, loc)

	want := time.Date(2026, 3, 4, 10, 0, 0, 0, loc)
	if !start.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, start)
	}
	if end.Sub(start) != time.Hour {
		t.Fatalf("expected one hour slot, got %v", end.Sub(start))
	}
}

func TestAutoCreateEventsIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	businessID := uuid.New()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.booked[businessID] = []repository.BookedLead{
		{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", CreatedAt: created},
		{ID: uuid.New(), Name: "Bo", Email: "bo@example.com", CreatedAt: created},
	}
	reminders := &recordingScheduler{}
	svc, bus := newTestService(repo, reminders)

	var published int
	var mu sync.Mutex
	bus.Subscribe(events.CalendarEventCreated{}.EventName(), events.HandlerFunc(func(context.Context, events.Event) error {
		mu.Lock()
		published++
		mu.Unlock()
		return nil
	}))

	scope := tenant.Scope{UserID: uuid.New(), BusinessID: businessID, Role: tenant.RoleOwner}
	first, err := svc.AutoCreateEvents(context.Background(), scope)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.AutoCreateEvents(context.Background(), scope)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	bus.Wait()

	if len(first.Created) != 2 || len(second.Created) != 0 {
		t.Fatalf("expected 2 then 0 events, got %d then %d", len(first.Created), len(second.Created))
	}
	if published != 2 {
		t.Fatalf("expected 2 published events, got %d", published)
	}

	e := first.Created[0]
	if e.Title != "Appointment with Ana" || e.Location != DefaultLocation || e.Status != EventStatusScheduled {
		t.Fatalf("unexpected event %+v", e)
	}
	if len(e.Participants) != 1 || e.Participants[0] != "ana@example.com" {
		t.Fatalf("unexpected participants %v", e.Participants)
	}
	if len(e.Reminders) != 1 || e.Reminders[0].MinutesBefore != 1440 {
		t.Fatalf("unexpected reminders %v", e.Reminders)
	}
	if got := reminders.runAt[e.ID]; !got.Equal(e.StartTime.Add(-24 * time.Hour)) {
		t.Fatalf("expected reminder at start-24h, got %v", got)
	}
}

func TestAutoCreateEventsIgnoresReminderFailures(t *testing.T) {
	repo := newMemRepo()
	businessID := uuid.New()
	repo.booked[businessID] = []repository.BookedLead{
		{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	svc, bus := newTestService(repo, &recordingScheduler{err: errors.New("redis down")})

	result, err := svc.AutoCreateEvents(context.Background(), tenant.Scope{BusinessID: businessID})
	bus.Wait()
	if err != nil {
		t.Fatalf("expected reminder failure to be ignored, got %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result.Created))
	}
}

func TestAutoCreateEventsWithoutScheduler(t *testing.T) {
	repo := newMemRepo()
	businessID := uuid.New()
	repo.booked[businessID] = []repository.BookedLead{{ID: uuid.New(), Name: "Ana", CreatedAt: time.Now()}}
	svc, bus := newTestService(repo, nil)

	result, err := svc.AutoCreateEvents(context.Background(), tenant.Scope{BusinessID: businessID})
	bus.Wait()
	if err != nil || len(result.Created) != 1 {
		t.Fatalf("expected 1 event without error, got %d, %v", len(result.Created), err)
	}
	if len(result.Created[0].Participants) != 0 {
		t.Fatalf("expected no participants for lead without email, got %v", result.Created[0].Participants)
	}
}

func TestListEventsRejectsInvertedRange(t *testing.T) {
	svc, _ := newTestService(newMemRepo(), nil)
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.ListEvents(context.Background(), tenant.Scope{BusinessID: uuid.New()}, from, from.Add(-time.Hour))
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}
