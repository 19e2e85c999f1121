package handler

import (
	"net/http"

	"leadnest/internal/businesses/service"
	"leadnest/internal/businesses/transport"
	"leadnest/internal/tenant"
	"leadnest/platform/httpkit"
	"leadnest/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
	msgMissingFile      = "file is required"
	logoFormField       = "file"
)

type Handler struct {
	svc         *service.Service
	val         *validator.Validator
	maxFileSize int64
}

func New(svc *service.Service, val *validator.Validator, maxFileSize int64) *Handler {
	return &Handler{svc: svc, val: val, maxFileSize: maxFileSize}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, withLogo bool) {
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.GET("/:id/team", h.ListTeam)
	rg.DELETE("/:id/team/:userId", h.RemoveMember)
	if withLogo {
		rg.POST("/:id/logo", h.UploadLogo)
	}
}

func (h *Handler) Get(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	profile, err := h.svc.Get(c.Request.Context(), scope, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toBusinessResponse(profile))
}

func (h *Handler) Update(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	err := h.svc.Update(c.Request.Context(), scope, id, service.UpdateInput{
		Name:          req.Name,
		Email:         req.Email,
		ServiceTypes:  req.ServiceTypes,
		Qualification: req.Qualification,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SuccessResponse{Success: true})
}

func (h *Handler) ListTeam(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	members, err := h.svc.ListTeam(c.Request.Context(), scope, id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.TeamResponse{Members: make([]transport.MemberResponse, 0, len(members))}
	for _, m := range members {
		resp.Members = append(resp.Members, transport.MemberResponse{
			UserID:    m.UserID,
			Name:      m.Name,
			Email:     m.Email,
			Role:      m.Role,
			IsDefault: m.IsDefault,
			JoinedAt:  m.JoinedAt,
		})
	}
	httpkit.OK(c, resp)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(c.Request.Context(), scope, id, userID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SuccessResponse{Success: true})
}

func (h *Handler) UploadLogo(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if h.maxFileSize > 0 {
		// file size plus 1 MiB of multipart overhead
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+1<<20)
	}
	header, err := c.FormFile(logoFormField)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}
	file, err := header.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}
	defer file.Close()

	profile, err := h.svc.UploadLogo(c.Request.Context(), scope, id, service.LogoUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toBusinessResponse(profile))
}

func toBusinessResponse(p service.Profile) transport.BusinessResponse {
	b := p.Business
	serviceTypes := b.ServiceTypes
	if serviceTypes == nil {
		serviceTypes = []string{}
	}
	return transport.BusinessResponse{
		ID:                  b.ID,
		Name:                b.Name,
		Slug:                b.Slug,
		Email:               b.Email,
		ServiceTypes:        serviceTypes,
		OnboardingStep:      b.OnboardingStep,
		OnboardingCompleted: b.OnboardingCompleted,
		Settings:            b.Settings,
		LogoURL:             p.LogoURL,
		CreatedAt:           b.CreatedAt,
	}
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
