package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workpulse/timesheet-api/internal/middleware"
	"github.com/workpulse/timesheet-api/internal/models"
	appErrors "github.com/workpulse/timesheet-api/pkg/errors"
	"github.com/workpulse/timesheet-api/pkg/response"
)

type exportService interface {
	EntriesCSV(ctx context.Context, identity models.Identity, from, to *time.Time, targetUserID string) ([]byte, error)
	TimesheetPDF(ctx context.Context, identity models.Identity, recordID string) ([]byte, error)
}

// ExportHandler streams rendered exports back to the client.
type ExportHandler struct {
	service exportService
	now     func() time.Time
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service, now: time.Now}
}

// CSV godoc
// @Summary Export timesheet entries in a window as CSV
// @Tags Exports
// @Produce text/csv
// @Param start_date query string false "Week start lower bound (YYYY-MM-DD)"
// @Param end_date query string false "Week start upper bound (YYYY-MM-DD)"
// @Param user_id query string false "Target user. Defaults to the caller"
// @Success 200 {string} string "CSV payload"
// @Router /exports/csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	from, err := parseOptionalDate(c.Query("start_date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start_date, expected YYYY-MM-DD"))
		return
	}
	to, err := parseOptionalDate(c.Query("end_date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end_date, expected YYYY-MM-DD"))
		return
	}

	payload, err := h.service.EntriesCSV(c.Request.Context(), claims.Identity(), from, to, strings.TrimSpace(c.Query("user_id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("timesheets_%d.csv", h.now().Unix())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// PDF renders a single timesheet as a PDF report.
func (h *ExportHandler) PDF(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	recordID := c.Param("id")
	payload, err := h.service.TimesheetPDF(c.Request.Context(), claims.Identity(), recordID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timesheet_%s.pdf", recordID))
	c.Data(http.StatusOK, "application/pdf", payload)
}
