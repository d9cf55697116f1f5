package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workpulse/timesheet-api/internal/dto"
	"github.com/workpulse/timesheet-api/internal/middleware"
	"github.com/workpulse/timesheet-api/internal/models"
	appErrors "github.com/workpulse/timesheet-api/pkg/errors"
	"github.com/workpulse/timesheet-api/pkg/response"
)

type timesheetService interface {
	CreateOrReplace(ctx context.Context, ownerID string, weekStartInput time.Time, entries []models.TimeEntry) (*models.Timesheet, error)
	Submit(ctx context.Context, recordID, callerID string) (*models.Timesheet, error)
	GetWeek(ctx context.Context, ownerID string, date time.Time) (*models.Timesheet, error)
	Review(ctx context.Context, recordID string, reviewer models.Identity, decision models.TimesheetStatus, rejectionReason *string) (*models.Timesheet, error)
	GetByID(ctx context.Context, recordID string, identity models.Identity) (*models.Timesheet, error)
	ListMine(ctx context.Context, ownerID string, from, to *time.Time) ([]models.Timesheet, error)
	Pending(ctx context.Context, identity models.Identity) ([]models.Timesheet, error)
}

// TimesheetHandler wires the timesheet workflow to HTTP endpoints.
type TimesheetHandler struct {
	service timesheetService
	now     func() time.Time
}

// NewTimesheetHandler constructs the handler.
func NewTimesheetHandler(service timesheetService) *TimesheetHandler {
	return &TimesheetHandler{service: service, now: time.Now}
}

// Save godoc
// @Summary Create or replace the caller's timesheet for a week
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimesheetRequest true "Week and entries"
// @Success 201 {object} response.Envelope
// @Router /timesheets [post]
func (h *TimesheetHandler) Save(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SaveTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timesheet payload"))
		return
	}

	weekStart, err := parseDate(req.WeekStartDate)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid week_start_date, expected YYYY-MM-DD"))
		return
	}

	entries := make([]models.TimeEntry, 0, len(req.Entries))
	for _, payload := range req.Entries {
		date, err := parseDate(payload.Date)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid entry date, expected YYYY-MM-DD"))
			return
		}
		entries = append(entries, models.TimeEntry{
			Date:            date,
			Hours:           payload.Hours,
			ProjectName:     payload.ProjectName,
			TaskDescription: payload.TaskDescription,
			Status:          models.EntryStatus(payload.Status),
		})
	}

	ts, err := h.service.CreateOrReplace(c.Request.Context(), claims.UserID, weekStart, entries)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ts)
}

// Mine godoc
// @Summary List the caller's timesheets
// @Tags Timesheets
// @Produce json
// @Param start_date query string false "Week start lower bound (YYYY-MM-DD)"
// @Param end_date query string false "Week start upper bound (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /timesheets/my [get]
func (h *TimesheetHandler) Mine(c *gin.Context) {
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

	timesheets, err := h.service.ListMine(c.Request.Context(), claims.UserID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.TimesheetListResponse{Count: len(timesheets), Timesheets: timesheets})
}

// Week returns the caller's timesheet for the week containing the given
// date, defaulting to the current week.
func (h *TimesheetHandler) Week(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	date := h.now()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	ts, err := h.service.GetWeek(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ts)
}

// Pending godoc
// @Summary List submitted timesheets awaiting review within the caller's scope
// @Tags Timesheets
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timesheets/pending [get]
func (h *TimesheetHandler) Pending(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	timesheets, err := h.service.Pending(c.Request.Context(), claims.Identity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.TimesheetListResponse{Count: len(timesheets), Timesheets: timesheets})
}

// Get returns a single timesheet by id.
func (h *TimesheetHandler) Get(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	ts, err := h.service.GetByID(c.Request.Context(), c.Param("id"), claims.Identity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ts)
}

// Submit transitions the caller's draft timesheet to submitted.
func (h *TimesheetHandler) Submit(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	ts, err := h.service.Submit(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ts)
}

// Review godoc
// @Summary Approve or reject a submitted timesheet
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Timesheet ID"
// @Param payload body dto.ReviewRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /timesheets/{id}/review [patch]
func (h *TimesheetHandler) Review(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload"))
		return
	}

	decision := models.TimesheetStatus(strings.ToLower(strings.TrimSpace(req.Decision)))
	ts, err := h.service.Review(c.Request.Context(), c.Param("id"), claims.Identity(), decision, req.RejectionReason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ts)
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func parseOptionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
