package dto

import "github.com/workpulse/timesheet-api/internal/models"

// SaveTimesheetRequest creates or replaces the caller's timesheet for the
// week containing WeekStartDate.
type SaveTimesheetRequest struct {
	WeekStartDate string             `json:"week_start_date" binding:"required"`
	Entries       []TimeEntryPayload `json:"entries" binding:"required"`
}

// TimeEntryPayload is one submitted day of work.
type TimeEntryPayload struct {
	Date            string  `json:"date" binding:"required"`
	Hours           float64 `json:"hours"`
	ProjectName     string  `json:"project_name"`
	TaskDescription string  `json:"task_description"`
	Status          string  `json:"status"`
}

// ReviewRequest carries the approval decision for a submitted timesheet.
type ReviewRequest struct {
	Decision        string  `json:"decision" binding:"required"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// TimesheetListResponse wraps a list of timesheets with its count.
type TimesheetListResponse struct {
	Count      int                `json:"count"`
	Timesheets []models.Timesheet `json:"timesheets"`
}
