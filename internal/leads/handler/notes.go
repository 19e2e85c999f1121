package handler

import (
	"net/http"

	"leadnest/internal/leads/notes"
	"leadnest/internal/leads/repository"
	"leadnest/internal/leads/transport"
	"leadnest/internal/tenant"
	"leadnest/platform/httpkit"
	"leadnest/platform/validator"

	"github.com/gin-gonic/gin"
)

type NotesHandler struct {
	svc *notes.Service
	val *validator.Validator
}

// NewNotesHandler creates the lead notes handler.
func NewNotesHandler(svc *notes.Service, val *validator.Validator) *NotesHandler {
	return &NotesHandler{svc: svc, val: val}
}

// RegisterRoutes mounts the notes routes under a lead.
func (h *NotesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/notes", h.List)
	rg.POST("/:id/notes", h.Add)
}

func (h *NotesHandler) Add(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	note, err := h.svc.Add(c.Request.Context(), scope, leadID, req.Note)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toNoteResponse(note))
}

func (h *NotesHandler) List(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	items, err := h.svc.List(c.Request.Context(), scope, leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.NoteListResponse{Items: make([]transport.NoteResponse, 0, len(items))}
	for _, n := range items {
		resp.Items = append(resp.Items, toNoteResponse(n))
	}
	httpkit.OK(c, resp)
}

func toNoteResponse(n repository.LeadNote) transport.NoteResponse {
	return transport.NoteResponse{
		ID:         n.ID,
		LeadID:     n.LeadID,
		UserID:     n.UserID,
		AuthorName: n.AuthorName,
		Note:       n.Note,
		CreatedAt:  n.CreatedAt,
	}
}
