package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadnest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type Reminder struct {
	Type          string `json:"type"`
	MinutesBefore int    `json:"minutesBefore"`
}

type Event struct {
	ID           uuid.UUID
	BusinessID   uuid.UUID
	LeadID       *uuid.UUID
	Title        string
	Description  string
	Type         string
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	Location     string
	Participants []string
	Reminders    []Reminder
	CreatedAt    time.Time
}

// BookedLead is a booked lead that has no calendar event yet.
type BookedLead struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

type NewEvent struct {
	BusinessID   uuid.UUID
	LeadID       *uuid.UUID
	Title        string
	Description  string
	Type         string
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	Location     string
	Participants []string
	Reminders    []Reminder
}

const eventColumns = `id, business_id, lead_id, title, description, type, start_time, end_time, status, location,
	participants, reminders, created_at`

const (
	bookedWithoutEventQuery = `
		SELECT l.id, l.name, l.email, l.created_at
		FROM leads l
		LEFT JOIN calendar_events e ON e.lead_id = l.id
		WHERE l.business_id = $1 AND l.status = 'booked' AND e.id IS NULL
		ORDER BY l.created_at ASC`

	insertEventQuery = `
		INSERT INTO calendar_events
			(business_id, lead_id, title, description, type, start_time, end_time, status, location, participants, reminders)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb)
		ON CONFLICT (lead_id) DO NOTHING
		RETURNING ` + eventColumns

	listEventsQuery = `
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE business_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC`

	selectEventQuery = `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = $1 AND business_id = $2`
)

type Repository struct {
	pool db.Pool
}

func New(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	var participants, reminders []byte
	err := row.Scan(&e.ID, &e.BusinessID, &e.LeadID, &e.Title, &e.Description, &e.Type, &e.StartTime, &e.EndTime,
		&e.Status, &e.Location, &participants, &reminders, &e.CreatedAt)
	if err != nil {
		return Event{}, err
	}
	e.Participants = []string{}
	if len(participants) > 0 {
		if err := json.Unmarshal(participants, &e.Participants); err != nil {
			return Event{}, fmt.Errorf("decode participants: %w", err)
		}
	}
	e.Reminders = []Reminder{}
	if len(reminders) > 0 {
		if err := json.Unmarshal(reminders, &e.Reminders); err != nil {
			return Event{}, fmt.Errorf("decode reminders: %w", err)
		}
	}
	return e, nil
}

func (r *Repository) FindBookedWithoutEvent(ctx context.Context, businessID uuid.UUID) ([]BookedLead, error) {
	rows, err := r.pool.Query(ctx, bookedWithoutEventQuery, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]BookedLead, 0)
	for rows.Next() {
		var l BookedLead
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.CreatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// Insert stores e. It reports false when the lead already has an event.
func (r *Repository) Insert(ctx context.Context, e NewEvent) (Event, bool, error) {
	participants, err := json.Marshal(nonNil(e.Participants))
	if err != nil {
		return Event{}, false, fmt.Errorf("encode participants: %w", err)
	}
	reminders := e.Reminders
	if reminders == nil {
		reminders = []Reminder{}
	}
	remindersJSON, err := json.Marshal(reminders)
	if err != nil {
		return Event{}, false, fmt.Errorf("encode reminders: %w", err)
	}

	event, err := scanEvent(r.pool.QueryRow(ctx, insertEventQuery,
		e.BusinessID, e.LeadID, e.Title, e.Description, e.Type, e.StartTime, e.EndTime, e.Status, e.Location,
		string(participants), string(remindersJSON),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, err
	}
	return event, true, nil
}

func (r *Repository) List(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]Event, error) {
	rows, err := r.pool.Query(ctx, listEventsQuery, businessID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id, businessID uuid.UUID) (Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, selectEventQuery, id, businessID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return e, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
