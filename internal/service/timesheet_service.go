package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/workpulse/timesheet-api/internal/models"
	appErrors "github.com/workpulse/timesheet-api/pkg/errors"
	"github.com/workpulse/timesheet-api/pkg/period"
)

type timesheetStore interface {
	FindByID(ctx context.Context, id string) (*models.Timesheet, error)
	FindByOwnerAndWeek(ctx context.Context, ownerID string, weekStart time.Time) (*models.Timesheet, error)
	Upsert(ctx context.Context, ts *models.Timesheet) error
	MarkSubmitted(ctx context.Context, id string, at time.Time) (bool, error)
	MarkReviewed(ctx context.Context, id string, decision models.TimesheetStatus, reviewerID string, at time.Time, rejectionReason *string) (bool, error)
	List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, error)
}

type scopeProvider interface {
	ScopeFor(ctx context.Context, identity models.Identity) (models.RecordScope, error)
}

type analyticsInvalidator interface {
	InvalidateAnalytics(ctx context.Context)
}

// TimesheetService owns the weekly timesheet workflow:
// draft -> submitted -> approved/rejected. Approved and rejected are
// terminal; the only way to edit afterwards is CreateOrReplace, which
// deliberately resets the week to draft.
type TimesheetService struct {
	store      timesheetStore
	visibility scopeProvider
	cache      analyticsInvalidator
	logger     *zap.Logger
	now        func() time.Time
}

// NewTimesheetService constructs a TimesheetService.
func NewTimesheetService(store timesheetStore, visibility scopeProvider, cache analyticsInvalidator, logger *zap.Logger) *TimesheetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimesheetService{
		store:      store,
		visibility: visibility,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

// ValidateEntries checks every entry before any mutation: hours within
// [0, 24], project and task text present, known entry status. A missing
// entry status defaults to completed.
func ValidateEntries(entries []models.TimeEntry) ([]models.TimeEntry, error) {
	validated := make([]models.TimeEntry, len(entries))
	for i, entry := range entries {
		if entry.Hours < 0 || entry.Hours > 24 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %d: hours must be between 0 and 24", i+1))
		}
		if entry.ProjectName == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %d: project name is required", i+1))
		}
		if entry.TaskDescription == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %d: task description is required", i+1))
		}
		if entry.Date.IsZero() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %d: date is required", i+1))
		}
		if entry.Status == "" {
			entry.Status = models.EntryCompleted
		}
		if !entry.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %d: unknown entry status %q", i+1, entry.Status))
		}
		validated[i] = entry
	}
	return validated, nil
}

// CreateOrReplace saves the owner's timesheet for the ISO week containing
// weekStartInput. An existing week has its entries replaced wholesale and
// its status forced back to draft, clearing reviewer metadata even when
// the sheet was already approved or rejected. The total is recomputed from
// the entries before anything is persisted.
func (s *TimesheetService) CreateOrReplace(ctx context.Context, ownerID string, weekStartInput time.Time, entries []models.TimeEntry) (*models.Timesheet, error) {
	validated, err := ValidateEntries(entries)
	if err != nil {
		return nil, err
	}

	weekStart := period.WeekStart(weekStartInput)
	ts := &models.Timesheet{
		OwnerID:    ownerID,
		WeekStart:  weekStart,
		WeekEnd:    period.WeekEnd(weekStart),
		Entries:    validated,
		TotalHours: models.TotalHours(validated),
		Status:     models.StatusDraft,
	}

	if err := s.store.Upsert(ctx, ts); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timesheet")
	}

	s.invalidateAnalytics(ctx)
	return ts, nil
}

// Submit transitions the caller's draft timesheet to submitted. Only the
// owner may submit, and only from draft.
func (s *TimesheetService) Submit(ctx context.Context, recordID, callerID string) (*models.Timesheet, error) {
	ts, err := s.findByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if ts.OwnerID != callerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner may submit a timesheet")
	}
	if ts.Status != models.StatusDraft {
		return nil, appErrors.InvalidState(string(ts.Status), "timesheet already submitted")
	}

	now := s.now().UTC()
	applied, err := s.store.MarkSubmitted(ctx, recordID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit timesheet")
	}
	if !applied {
		// A concurrent transition won the race; report the state it left.
		return nil, s.staleStateError(ctx, recordID, "timesheet already submitted")
	}

	ts.Status = models.StatusSubmitted
	ts.SubmittedAt = &now
	s.invalidateAnalytics(ctx)
	return ts, nil
}

// Review approves or rejects a submitted timesheet. Role checks
// (manager/admin) belong to the transport boundary; the service still
// refuses self-review because role alone does not stop a manager from
// approving their own sheet. The rejection reason is stored only on
// rejection.
func (s *TimesheetService) Review(ctx context.Context, recordID string, reviewer models.Identity, decision models.TimesheetStatus, rejectionReason *string) (*models.Timesheet, error) {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be approved or rejected")
	}

	ts, err := s.findByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if ts.OwnerID == reviewer.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "reviewing your own timesheet is not permitted")
	}
	if ts.Status != models.StatusSubmitted {
		return nil, appErrors.InvalidState(string(ts.Status), "timesheet is not awaiting review")
	}

	var reason *string
	if decision == models.StatusRejected && rejectionReason != nil && *rejectionReason != "" {
		reason = rejectionReason
	}

	now := s.now().UTC()
	applied, err := s.store.MarkReviewed(ctx, recordID, decision, reviewer.UserID, now, reason)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review timesheet")
	}
	if !applied {
		return nil, s.staleStateError(ctx, recordID, "timesheet is not awaiting review")
	}

	ts.Status = decision
	ts.ReviewerID = &reviewer.UserID
	ts.ReviewedAt = &now
	ts.RejectionReason = reason
	s.invalidateAnalytics(ctx)
	return ts, nil
}

// GetWeek returns the caller's timesheet for the week containing date, so
// clients can load the current draft for editing.
func (s *TimesheetService) GetWeek(ctx context.Context, ownerID string, date time.Time) (*models.Timesheet, error) {
	ts, err := s.store.FindByOwnerAndWeek(ctx, ownerID, period.WeekStart(date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timesheet for this week")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch timesheet")
	}
	return ts, nil
}

// GetByID returns a single timesheet, restricted to records the caller
// owns or that fall inside their visibility scope.
func (s *TimesheetService) GetByID(ctx context.Context, recordID string, identity models.Identity) (*models.Timesheet, error) {
	ts, err := s.findByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if ts.OwnerID == identity.UserID {
		return ts, nil
	}
	scope, err := s.visibility.ScopeFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !scope.Matches(ts.OwnerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied")
	}
	return ts, nil
}

// ListMine returns the caller's timesheets, newest week first, optionally
// bounded by a week-start range.
func (s *TimesheetService) ListMine(ctx context.Context, ownerID string, from, to *time.Time) ([]models.Timesheet, error) {
	filter := models.TimesheetFilter{
		Scope:         models.ScopeOwners(ownerID),
		WeekStartFrom: from,
		WeekStartTo:   to,
		OrderBy:       "week_start",
		OrderDesc:     true,
	}
	timesheets, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timesheets")
	}
	return timesheets, nil
}

// Pending returns submitted timesheets within the caller's scope, most
// recently submitted first.
func (s *TimesheetService) Pending(ctx context.Context, identity models.Identity) ([]models.Timesheet, error) {
	scope, err := s.visibility.ScopeFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	filter := models.TimesheetFilter{
		Scope:     scope,
		Statuses:  []models.TimesheetStatus{models.StatusSubmitted},
		OrderBy:   "submitted_at",
		OrderDesc: true,
	}
	timesheets, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending timesheets")
	}
	return timesheets, nil
}

func (s *TimesheetService) findByID(ctx context.Context, recordID string) (*models.Timesheet, error) {
	ts, err := s.store.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timesheet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch timesheet")
	}
	return ts, nil
}

func (s *TimesheetService) staleStateError(ctx context.Context, recordID, message string) error {
	current := "unknown"
	if refreshed, err := s.store.FindByID(ctx, recordID); err == nil {
		current = string(refreshed.Status)
	}
	return appErrors.InvalidState(current, message)
}

func (s *TimesheetService) invalidateAnalytics(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAnalytics(ctx)
	}
}
