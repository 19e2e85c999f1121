package handler

import (
	"net/http"
	"strconv"
	"time"

	"leadnest/internal/analytics/service"
	"leadnest/internal/tenant"
	"leadnest/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type SourceStatResponse struct {
	Source         string  `json:"source"`
	Total          int     `json:"total"`
	Booked         int     `json:"booked"`
	ConversionRate float64 `json:"conversionRate"`
	AvgDealValue   float64 `json:"avgDealValue"`
}

type TrendPointResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type SourcesResponse struct {
	Sources      []SourceStatResponse            `json:"sources"`
	SourceTrends map[string][]TrendPointResponse `json:"sourceTrends"`
	Period       string                          `json:"period"`
	TotalSources int                             `json:"totalSources"`
	Timestamp    time.Time                       `json:"timestamp"`
}

type Handler struct {
	svc *service.Service
}

// New creates the analytics handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the analytics routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sources", h.Sources)
}

func (h *Handler) Sources(c *gin.Context) {
	scope, ok := tenant.MustScope(c)
	if !ok {
		return
	}

	days := service.DefaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "days must be a whole number", nil)
			return
		}
		days = n
	}

	report, err := h.svc.Sources(c.Request.Context(), scope, days)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := SourcesResponse{
		Sources:      make([]SourceStatResponse, 0, len(report.Sources)),
		SourceTrends: make(map[string][]TrendPointResponse, len(report.SourceTrends)),
		Period:       report.Period,
		TotalSources: report.TotalSources,
		Timestamp:    report.Timestamp,
	}
	for _, s := range report.Sources {
		resp.Sources = append(resp.Sources, SourceStatResponse{
			Source:         s.Source,
			Total:          s.Total,
			Booked:         s.Booked,
			ConversionRate: s.ConversionRate,
			AvgDealValue:   s.AvgDealValue.InexactFloat64(),
		})
	}
	for source, points := range report.SourceTrends {
		out := make([]TrendPointResponse, len(points))
		for i, p := range points {
			out[i] = TrendPointResponse{Date: p.Date, Count: p.Count}
		}
		resp.SourceTrends[source] = out
	}
	httpkit.OK(c, resp)
}
