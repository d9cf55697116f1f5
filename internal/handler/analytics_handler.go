package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workpulse/timesheet-api/internal/middleware"
	"github.com/workpulse/timesheet-api/internal/models"
	appErrors "github.com/workpulse/timesheet-api/pkg/errors"
	"github.com/workpulse/timesheet-api/pkg/response"
)

type analyticsService interface {
	DashboardStats(ctx context.Context, identity models.Identity, year int, month time.Month) (*models.DashboardStats, bool, error)
	WeeklyTrend(ctx context.Context, identity models.Identity, weeks int, ref time.Time) ([]models.TrendPoint, bool, error)
	DetectOverworked(ctx context.Context, identity models.Identity, weeks int, ref time.Time) (*models.OverworkReport, bool, error)
}

// AnalyticsHandler wires the analytics service to HTTP endpoints.
type AnalyticsHandler struct {
	service analyticsService
	now     func() time.Time
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, now: time.Now}
}

// Dashboard godoc
// @Summary Dashboard statistics for a month
// @Tags Analytics
// @Produce json
// @Param year query int false "Year. Defaults to the current year"
// @Param month query int false "Month (1-12). Defaults to the current month"
// @Success 200 {object} response.Envelope
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	now := h.now().UTC()
	year := now.Year()
	month := now.Month()
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid year"))
			return
		}
		year = parsed
	}
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid month"))
			return
		}
		month = time.Month(parsed)
	}

	stats, cacheHit, err := h.service.DashboardStats(c.Request.Context(), claims.Identity(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats, map[string]interface{}{"cache_hit": cacheHit})
}

// Trend godoc
// @Summary Weekly hour totals over a trailing window
// @Tags Analytics
// @Produce json
// @Param weeks query int false "Trailing weeks. Defaults to 12"
// @Success 200 {object} response.Envelope
// @Router /analytics/trend [get]
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	weeks, err := parseWeeks(c.Query("weeks"), 12)
	if err != nil {
		response.Error(c, err)
		return
	}

	trend, cacheHit, err := h.service.WeeklyTrend(c.Request.Context(), claims.Identity(), weeks, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, trend, map[string]interface{}{"cache_hit": cacheHit})
}

// Overworked godoc
// @Summary Risk-tiered overwork report for the caller's scope
// @Tags Analytics
// @Produce json
// @Param weeks query int false "Trailing weeks. Defaults to 4"
// @Success 200 {object} response.Envelope
// @Router /analytics/overworked [get]
func (h *AnalyticsHandler) Overworked(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	weeks, err := parseWeeks(c.Query("weeks"), 4)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, cacheHit, err := h.service.DetectOverworked(c.Request.Context(), claims.Identity(), weeks, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report, map[string]interface{}{"cache_hit": cacheHit})
}

func parseWeeks(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	weeks, err := strconv.Atoi(raw)
	if err != nil || weeks <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "weeks must be a positive integer")
	}
	return weeks, nil
}
