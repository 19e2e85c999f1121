package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Email       string   `json:"email" validate:"omitempty,email,max=254"`
	Phone       string   `json:"phone" validate:"omitempty,max=40"`
	ServiceType string   `json:"serviceType" validate:"omitempty,max=100"`
	Location    string   `json:"location" validate:"omitempty,max=200"`
	Status      string   `json:"status" validate:"omitempty,leadstatus"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Message     string   `json:"message" validate:"omitempty,max=5000"`
	Source      *string  `json:"source" validate:"omitempty,max=50"`
}

// PublicLeadRequest is the body of the public intake form.
type PublicLeadRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"required,email,max=254"`
	Phone       string  `json:"phone" validate:"omitempty,max=40"`
	ServiceType string  `json:"serviceType" validate:"omitempty,max=100"`
	Location    string  `json:"location" validate:"omitempty,max=200"`
	Message     string  `json:"message" validate:"omitempty,max=5000"`
	Source      *string `json:"source" validate:"omitempty,max=50"`
}

type UpdateStatusRequest struct {
	LeadID *uuid.UUID `json:"leadId"`
	Status string     `json:"status" validate:"required,leadstatus"`
}

type BulkUpdateStatusRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500"`
	Status  string      `json:"status" validate:"required,leadstatus"`
}

type AddNoteRequest struct {
	Note string `json:"note" validate:"required,max=5000"`
}

type UpdateInternalNotesRequest struct {
	InternalNotes string `json:"internalNotes" validate:"max=10000"`
}

type ListLeadsRequest struct {
	Status   string `form:"status" validate:"omitempty,leadstatus"`
	Source   string `form:"source" validate:"omitempty,max=50"`
	Search   string `form:"search" validate:"omitempty,max=200"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type LeadResponse struct {
	ID                 uuid.UUID `json:"id"`
	BusinessID         uuid.UUID `json:"businessId"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	ServiceType        string    `json:"serviceType"`
	Location           string    `json:"location"`
	Status             string    `json:"status"`
	Priority           string    `json:"priority"`
	Tags               []string  `json:"tags"`
	Message            string    `json:"message"`
	QualificationNotes string    `json:"qualificationNotes"`
	InternalNotes      string    `json:"internalNotes"`
	Source             string    `json:"source"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type UpdateStatusResponse struct {
	Success     bool         `json:"success"`
	RowsUpdated int          `json:"rowsUpdated"`
	Data        LeadResponse `json:"data"`
}

type BulkUpdateStatusResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RowsUpdated int    `json:"rowsUpdated"`
}

type LeadDataResponse struct {
	Success bool         `json:"success"`
	Data    LeadResponse `json:"data"`
}

type NoteResponse struct {
	ID         uuid.UUID  `json:"id"`
	LeadID     uuid.UUID  `json:"leadId"`
	UserID     *uuid.UUID `json:"userId"`
	AuthorName *string    `json:"authorName"`
	Note       string     `json:"note"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type NoteListResponse struct {
	Items []NoteResponse `json:"items"`
}

// PublicLeadResponse only carries the id of the stored lead.
type PublicLeadResponse struct {
	Success bool      `json:"success"`
	LeadID  uuid.UUID `json:"leadId"`
}
