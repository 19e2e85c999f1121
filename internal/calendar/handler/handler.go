package handler

import (
	"fmt"
	"net/http"
	"time"

	"leadnest/internal/calendar/repository"
	"leadnest/internal/calendar/service"
	"leadnest/internal/tenant"
	"leadnest/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidFrom = "from must be an RFC3339 timestamp or YYYY-MM-DD date"
	msgInvalidTo   = "to must be an RFC3339 timestamp or YYYY-MM-DD date"
)

type ReminderResponse struct {
	Type          string `json:"type"`
	MinutesBefore int    `json:"minutesBefore"`
}

type EventResponse struct {
	ID           uuid.UUID          `json:"id"`
	LeadID       *uuid.UUID         `json:"leadId,omitempty"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Type         string             `json:"type"`
	StartTime    time.Time          `json:"startTime"`
	EndTime      time.Time          `json:"endTime"`
	Status       string             `json:"status"`
	Location     string             `json:"location"`
	Participants []string           `json:"participants"`
	Reminders    []ReminderResponse `json:"reminders"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type AutoCreateResponse struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	CreatedEvents []EventResponse `json:"createdEvents"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
}

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auto-create-events", h.AutoCreateEvents)
	rg.GET("/events", h.ListEvents)
}

func (h *Handler) AutoCreateEvents(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	result, err := h.svc.AutoCreateEvents(c.Request.Context(), scope)
	if httpkit.HandleError(c, err) {
		return
	}

	created := make([]EventResponse, len(result.Created))
	for i, e := range result.Created {
		created[i] = toEventResponse(e)
	}
	httpkit.OK(c, AutoCreateResponse{
		Success:       true,
		Message:       fmt.Sprintf("Created %d calendar event(s)", len(created)),
		CreatedEvents: created,
	})
}

func (h *Handler) ListEvents(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	from, err := parseBound(c.Query("from"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidFrom, nil)
		return
	}
	to, err := parseBound(c.Query("to"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidTo, nil)
		return
	}

	list, err := h.svc.ListEvents(c.Request.Context(), scope, from, to)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := EventListResponse{Events: make([]EventResponse, len(list))}
	for i, e := range list {
		resp.Events[i] = toEventResponse(e)
	}
	httpkit.OK(c, resp)
}

func parseBound(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, time.Local)
}

func toEventResponse(e repository.Event) EventResponse {
	reminders := make([]ReminderResponse, len(e.Reminders))
	for i, r := range e.Reminders {
		reminders[i] = ReminderResponse{Type: r.Type, MinutesBefore: r.MinutesBefore}
	}
	return EventResponse{
		ID:           e.ID,
		LeadID:       e.LeadID,
		Title:        e.Title,
		Description:  e.Description,
		Type:         e.Type,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Status:       e.Status,
		Location:     e.Location,
		Participants: e.Participants,
		Reminders:    reminders,
		CreatedAt:    e.CreatedAt,
	}
}
