package handler

import (
	"net/http"
	"strings"

	"leadnest/internal/auth/repository"
	"leadnest/internal/auth/service"
	"leadnest/internal/auth/transport"
	"leadnest/platform/httpkit"
	"leadnest/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.SignUp)
	rg.POST("/signin", h.SignIn)
	rg.POST("/forgot-password", h.ForgotPassword)
	rg.GET("/validate-reset-token", h.ValidateResetToken)
	rg.POST("/reset-password", h.ResetPassword)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req transport.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	acc, err := h.svc.SignUp(c.Request.Context(), service.SignUpInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		BusinessName: req.BusinessName,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.SignUpResponse{
		User:     toUserResponse(acc.User),
		Business: toBusinessResponse(repository.Membership{Business: acc.Business, Role: "owner"}),
	})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	res, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SignInResponse{
		AccessToken: res.AccessToken,
		User:        toUserResponse(res.User),
		Business:    optionalBusiness(res.Membership),
	})
}

func (h *Handler) Session(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	sess, err := h.svc.Session(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.SessionResponse{User: toUserResponse(sess.User)}
	if sess.Membership != nil {
		resp.Business = optionalBusiness(*sess.Membership)
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req transport.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.MessageResponse{Message: service.ForgotPasswordMessage})
}

func (h *Handler) ValidateResetToken(c *gin.Context) {
	rawToken := strings.TrimSpace(c.Query("token"))
	if rawToken == "" {
		httpkit.Error(c, http.StatusBadRequest, "token is required", nil)
		return
	}

	email, err := h.svc.ValidateResetToken(c.Request.Context(), rawToken)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ValidateResetTokenResponse{Email: email, Valid: true})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req transport.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.Password); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.MessageResponse{Message: "password updated"})
}

func toUserResponse(u repository.User) transport.UserResponse {
	return transport.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toBusinessResponse(m repository.Membership) transport.BusinessResponse {
	return transport.BusinessResponse{
		ID:                  m.Business.ID,
		Name:                m.Business.Name,
		Slug:                m.Business.Slug,
		Email:               m.Business.Email,
		Role:                m.Role,
		OnboardingStep:      m.Business.OnboardingStep,
		OnboardingCompleted: m.Business.OnboardingCompleted,
	}
}

func optionalBusiness(m repository.Membership) *transport.BusinessResponse {
	if m.Business.ID == uuid.Nil {
		return nil
	}
	resp := toBusinessResponse(m)
	return &resp
}
