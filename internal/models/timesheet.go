package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimesheetStatus models the workflow state of a weekly timesheet.
type TimesheetStatus string

const (
	StatusDraft     TimesheetStatus = "draft"
	StatusSubmitted TimesheetStatus = "submitted"
	StatusApproved  TimesheetStatus = "approved"
	StatusRejected  TimesheetStatus = "rejected"
)

// AllTimesheetStatuses lists every workflow state, used to zero-fill
// status counters.
var AllTimesheetStatuses = []TimesheetStatus{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected}

// Valid reports whether the status is a known workflow state.
func (s TimesheetStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// EntryStatus tracks the progress of a single logged task.
type EntryStatus string

const (
	EntryCompleted  EntryStatus = "completed"
	EntryInProgress EntryStatus = "in-progress"
	EntryBlocked    EntryStatus = "blocked"
)

// Valid reports whether the entry status is a known value.
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryCompleted, EntryInProgress, EntryBlocked:
		return true
	}
	return false
}

// TimeEntry is one day's logged work within a weekly timesheet.
type TimeEntry struct {
	Date            time.Time   `json:"date"`
	Hours           float64     `json:"hours"`
	ProjectName     string      `json:"project_name"`
	TaskDescription string      `json:"task_description"`
	Status          EntryStatus `json:"status"`
}

// EntryList stores time entries as a JSONB column.
type EntryList []TimeEntry

// Value implements driver.Valuer for JSONB storage.
func (e EntryList) Value() (driver.Value, error) {
	if e == nil {
		e = EntryList{}
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner for JSONB storage.
func (e *EntryList) Scan(src interface{}) error {
	if src == nil {
		*e = EntryList{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported entries column type %T", src)
	}
	return json.Unmarshal(raw, e)
}

// Timesheet aggregates one employee's entries for a single ISO week
// (Monday through Sunday). Exactly one row exists per (owner, week start).
type Timesheet struct {
	ID              string          `db:"id" json:"id"`
	OwnerID         string          `db:"owner_id" json:"owner_id"`
	WeekStart       time.Time       `db:"week_start" json:"week_start"`
	WeekEnd         time.Time       `db:"week_end" json:"week_end"`
	Entries         EntryList       `db:"entries" json:"entries"`
	TotalHours      float64         `db:"total_hours" json:"total_hours"`
	Status          TimesheetStatus `db:"status" json:"status"`
	SubmittedAt     *time.Time      `db:"submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time      `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewerID      *string         `db:"reviewer_id" json:"reviewer_id,omitempty"`
	RejectionReason *string         `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// TotalHours recomputes the derived hour total for a set of entries. The
// stored column is never trusted independently of this function; every
// write path calls it before persisting.
func TotalHours(entries []TimeEntry) float64 {
	var sum float64
	for _, entry := range entries {
		sum += entry.Hours
	}
	return sum
}

// RecordScope restricts which timesheet owners a query may touch. It is
// derived once per request from the caller's role and applied by every
// read path.
type RecordScope struct {
	All      bool
	OwnerIDs []string
}

// ScopeAll matches every record.
func ScopeAll() RecordScope {
	return RecordScope{All: true}
}

// ScopeOwners matches records owned by any of the given users.
func ScopeOwners(ownerIDs ...string) RecordScope {
	return RecordScope{OwnerIDs: ownerIDs}
}

// Matches reports whether the scope admits the given owner.
func (s RecordScope) Matches(ownerID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.OwnerIDs {
		if id == ownerID {
			return true
		}
	}
	return false
}

// Empty reports whether the scope can never match anything.
func (s RecordScope) Empty() bool {
	return !s.All && len(s.OwnerIDs) == 0
}

// TimesheetFilter captures query criteria for listing timesheets.
type TimesheetFilter struct {
	Scope         RecordScope
	WeekStartFrom *time.Time
	WeekStartTo   *time.Time
	Statuses      []TimesheetStatus
	OrderBy       string
	OrderDesc     bool
}
