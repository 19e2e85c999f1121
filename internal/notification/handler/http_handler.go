package handler

import (
	"net/http"
	"strconv"
	"time"

	"leadnest/internal/notification/inapp"
	"leadnest/internal/notification/sse"
	"leadnest/internal/tenant"
	"leadnest/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	msgNothingToMark  = "notificationId or markAll is required"
)

type MarkRequest struct {
	NotificationID *uuid.UUID `json:"notificationId"`
	MarkAll        bool       `json:"markAll"`
}

type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	LeadID    *uuid.UUID `json:"leadId,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
	Total         int                    `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"pageSize"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type HTTPHandler struct {
	svc *inapp.Service
	sse *sse.Service
}

func NewHTTPHandler(svc *inapp.Service, sseSvc *sse.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc, sse: sseSvc}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Mark)
	if h.sse != nil {
		rg.GET("/stream", h.Stream)
	}
}

func (h *HTTPHandler) List(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.svc.List(c.Request.Context(), scope, page, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := ListResponse{
		Notifications: make([]NotificationResponse, len(result.Items)),
		UnreadCount:   result.UnreadCount,
		Total:         result.Total,
		Page:          result.Page,
		PageSize:      result.PageSize,
	}
	for i, n := range result.Items {
		resp.Notifications[i] = NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			LeadID:    n.LeadID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	httpkit.OK(c, resp)
}

// Mark marks one notification, or all of them with markAll, as read.
func (h *HTTPHandler) Mark(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	ctx := c.Request.Context()
	switch {
	case req.MarkAll:
		if _, err := h.svc.MarkAllRead(ctx, scope); httpkit.HandleError(c, err) {
			return
		}
	case req.NotificationID != nil:
		if err := h.svc.MarkRead(ctx, scope, *req.NotificationID); httpkit.HandleError(c, err) {
			return
		}
	default:
		httpkit.Error(c, http.StatusBadRequest, msgNothingToMark, nil)
		return
	}

	httpkit.OK(c, SuccessResponse{Success: true})
}

func (h *HTTPHandler) Stream(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}
	h.sse.Stream(c, scope.UserID, scope.BusinessID)
}
