package handler

import (
	"net/http"

	"leadnest/internal/onboarding/repository"
	"leadnest/internal/onboarding/service"
	"leadnest/internal/onboarding/transport"
	"leadnest/internal/tenant"
	"leadnest/platform/httpkit"
	"leadnest/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.POST("", h.Advance)
}

func (h *Handler) Get(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	state, err := h.svc.Get(c.Request.Context(), scope)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(state))
}

func (h *Handler) Advance(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	var req transport.UpdateOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	in := service.AdvanceInput{Step: *req.Step, Completed: req.Completed != nil && *req.Completed}
	if d := req.BusinessData; d != nil {
		in.Data = &service.BusinessData{
			ServiceTypes:  d.ServiceTypes,
			BusinessEmail: d.BusinessEmail,
			Location:      d.Location,
			ServiceArea:   d.ServiceArea,
		}
	}

	state, err := h.svc.Advance(c.Request.Context(), scope, in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.UpdateOnboardingResponse{Success: true, Data: toResponse(state)})
}

func toResponse(s repository.State) transport.OnboardingResponse {
	settings := s.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return transport.OnboardingResponse{Step: s.Step, Completed: s.Completed, Settings: settings}
}
