package scheduler

import (
	"context"
	"errors"
	"fmt"

	"leadnest/internal/calendar/repository"
	"leadnest/internal/email"
	"leadnest/platform/config"
	"leadnest/platform/db"
	"leadnest/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	defaultConcurrency = 10
	statusScheduled    = "scheduled"
)

// EventReader loads calendar events for reminder delivery.
type EventReader interface {
	GetByID(ctx context.Context, id, businessID uuid.UUID) (repository.Event, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	events EventReader
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool db.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		events: repository.New(pool),
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskEventReminder, w.handleEventReminder)

	return w, nil
}

// Run processes tasks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("scheduler worker failed to start", "error", err)
		return err
	}

	<-ctx.Done()
	w.server.Shutdown()
	w.log.Info("scheduler worker stopped")
	return nil
}

func (w *Worker) handleEventReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEventReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		return fmt.Errorf("event id: %v: %w", err, asynq.SkipRetry)
	}
	businessID, err := uuid.Parse(payload.BusinessID)
	if err != nil {
		return fmt.Errorf("business id: %v: %w", err, asynq.SkipRetry)
	}

	event, err := w.events.GetByID(ctx, eventID, businessID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if event.Status != statusScheduled {
		return nil
	}

	reminder := email.EventReminder{
		Title:     event.Title,
		StartTime: event.StartTime,
		Location:  event.Location,
	}

	var sendErr error
	for _, to := range event.Participants {
		if err := w.sender.SendEventReminderEmail(ctx, to, reminder); err != nil {
			w.log.WithContext(ctx).Warn("event reminder email failed", "eventId", event.ID, "error", err)
			sendErr = errors.Join(sendErr, err)
		}
	}
	return sendErr
}
