package handler

import (
	"net/http"

	"leadnest/internal/leads/management"
	"leadnest/internal/leads/transport"
	"leadnest/platform/httpkit"
	"leadnest/platform/validator"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the unauthenticated intake form of a business.
type PublicHandler struct {
	svc *management.Service
	val *validator.Validator
}

// NewPublicHandler creates the unauthenticated lead intake handler.
func NewPublicHandler(svc *management.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes mounts the intake form route keyed by business slug.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:slug", h.Submit)
}

func (h *PublicHandler) Submit(c *gin.Context) {
	var req transport.PublicLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	lead, err := h.svc.CreatePublic(c.Request.Context(), c.Param("slug"), management.CreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ServiceType: req.ServiceType,
		Location:    req.Location,
		Message:     req.Message,
		Source:      req.Source,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.PublicLeadResponse{Success: true, LeadID: lead.ID})
}
