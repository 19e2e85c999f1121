package handler

import (
	"net/http"

	"leadnest/internal/leads/management"
	"leadnest/internal/leads/repository"
	"leadnest/internal/leads/transport"
	"leadnest/internal/tenant"
	"leadnest/platform/httpkit"
	"leadnest/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
	msgLeadIDMismatch   = "leadId does not match the path"
)

// Handler serves the tenant-scoped lead routes.
type Handler struct {
	svc *management.Service
	val *validator.Validator
}

func New(svc *management.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PATCH("/bulk/status", h.BulkUpdateStatus)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/status", h.UpdateStatus)
	rg.PATCH("/:id/internal-notes", h.UpdateInternalNotes)
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	result, err := h.svc.List(c.Request.Context(), scope, management.ListFilter{
		Status:   optionalString(req.Status),
		Source:   optionalString(req.Source),
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.LeadResponse, 0, len(result.Items))
	for _, lead := range result.Items {
		items = append(items, ToLeadResponse(lead))
	}
	httpkit.OK(c, transport.LeadListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) Get(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), scope, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ToLeadResponse(lead))
}

func (h *Handler) Create(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), scope, management.CreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ServiceType: req.ServiceType,
		Location:    req.Location,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
		Message:     req.Message,
		Source:      req.Source,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, ToLeadResponse(lead))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}
	if req.LeadID != nil && *req.LeadID != id {
		httpkit.Error(c, http.StatusBadRequest, msgLeadIDMismatch, nil)
		return
	}

	lead, err := h.svc.UpdateStatus(c.Request.Context(), scope, id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.UpdateStatusResponse{Success: true, RowsUpdated: 1, Data: ToLeadResponse(lead)})
}

func (h *Handler) BulkUpdateStatus(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	var req transport.BulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	result, err := h.svc.BulkUpdateStatus(c.Request.Context(), scope, req.LeadIDs, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.BulkUpdateStatusResponse{
		Success:     true,
		Message:     management.BulkMessage(result, req.Status),
		RowsUpdated: result.Updated,
	})
}

func (h *Handler) UpdateInternalNotes(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.UpdateInternalNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	lead, err := h.svc.UpdateInternalNotes(c.Request.Context(), scope, id, req.InternalNotes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LeadDataResponse{Success: true, Data: ToLeadResponse(lead)})
}

// ToLeadResponse maps a stored lead to its JSON shape. A lead without a
// source is reported as "direct".
func ToLeadResponse(l repository.Lead) transport.LeadResponse {
	source := "direct"
	if l.Source != nil {
		source = *l.Source
	}
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return transport.LeadResponse{
		ID:                 l.ID,
		BusinessID:         l.BusinessID,
		Name:               l.Name,
		Email:              l.Email,
		Phone:              l.Phone,
		ServiceType:        l.ServiceType,
		Location:           l.Location,
		Status:             l.Status,
		Priority:           l.Priority,
		Tags:               tags,
		Message:            l.Message,
		QualificationNotes: l.QualificationNotes,
		InternalNotes:      l.InternalNotes,
		Source:             source,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
