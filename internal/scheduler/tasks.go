package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskEventReminder = "calendar.reminder"

type EventReminderPayload struct {
	EventID    string `json:"eventId"`
	BusinessID string `json:"businessId"`
}

func NewEventReminderTask(payload EventReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEventReminder, data), nil
}

func ParseEventReminderPayload(task *asynq.Task) (EventReminderPayload, error) {
	var payload EventReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EventReminderPayload{}, err
	}
	return payload, nil
}
