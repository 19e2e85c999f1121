package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"leadnest/internal/calendar/repository"
	"leadnest/internal/email"
	"leadnest/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeEvents struct {
	event repository.Event
	err   error
}

func (f fakeEvents) GetByID(_ context.Context, id, businessID uuid.UUID) (repository.Event, error) {
	if f.err != nil {
		return repository.Event{}, f.err
	}
	if f.event.ID != id || f.event.BusinessID != businessID {
		return repository.Event{}, repository.ErrNotFound
	}
	return f.event, nil
}

type recordingSender struct {
	email.NoopSender
	sent []string
	err  error
}

func (r *recordingSender) SendEventReminderEmail(_ context.Context, to string, _ email.EventReminder) error {
	r.sent = append(r.sent, to)
	return r.err
}

func reminderTask(t *testing.T, e repository.Event) *asynq.Task {
	t.Helper()
	task, err := NewEventReminderTask(EventReminderPayload{EventID: e.ID.String(), BusinessID: e.BusinessID.String()})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func newTestWorker(events EventReader, sender email.Sender) *Worker {
	return &Worker{events: events, sender: sender, log: logger.NewWithWriter("test", io.Discard)}
}

func scheduledEvent() repository.Event {
	return repository.Event{
		ID:           uuid.New(),
		BusinessID:   uuid.New(),
		Title:        "Appointment with Ana",
		StartTime:    time.Now().Add(24 * time.Hour),
		Status:       "scheduled",
		Location:     "TBD",
		Participants: []string{"ana@example.com", "owner@example.com"},
	}
}

func TestEventReminderEmailsEveryParticipant(t *testing.T) {
	event := scheduledEvent()
	sender := &recordingSender{}

	if err := newTestWorker(fakeEvents{event: event}, sender).handleEventReminder(context.Background(), reminderTask(t, event)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %v", sender.sent)
	}
}

func TestEventReminderSkipsCancelledEvents(t *testing.T) {
	event := scheduledEvent()
	event.Status = "cancelled"
	sender := &recordingSender{}

	if err := newTestWorker(fakeEvents{event: event}, sender).handleEventReminder(context.Background(), reminderTask(t, event)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no emails, got %v", sender.sent)
	}
}

func TestEventReminderDeletedEventIsDropped(t *testing.T) {
	event := scheduledEvent()
	sender := &recordingSender{}
	w := newTestWorker(fakeEvents{err: repository.ErrNotFound}, sender)

	if err := w.handleEventReminder(context.Background(), reminderTask(t, event)); err != nil {
		t.Fatalf("expected nil for deleted event, got %v", err)
	}
}

func TestEventReminderBadPayloadSkipsRetry(t *testing.T) {
	w := newTestWorker(fakeEvents{}, &recordingSender{})

	err := w.handleEventReminder(context.Background(), asynq.NewTask(TaskEventReminder, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestEventReminderSendFailureIsRetried(t *testing.T) {
	event := scheduledEvent()
	sender := &recordingSender{err: errors.New("smtp down")}

	err := newTestWorker(fakeEvents{event: event}, sender).handleEventReminder(context.Background(), reminderTask(t, event))
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected every participant attempted, got %v", sender.sent)
	}
}
