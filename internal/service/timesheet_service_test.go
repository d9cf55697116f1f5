package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/workpulse/timesheet-api/internal/models"
	appErrors "github.com/workpulse/timesheet-api/pkg/errors"
)

type fakeTimesheetStore struct {
	byID          map[string]*models.Timesheet
	listed        []models.Timesheet
	listErr       error
	lastFilter    models.TimesheetFilter
	upserted      *models.Timesheet
	submitApplied bool
	reviewApplied bool
}

func (f *fakeTimesheetStore) FindByID(_ context.Context, id string) (*models.Timesheet, error) {
	ts, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *ts
	return &copied, nil
}

func (f *fakeTimesheetStore) FindByOwnerAndWeek(_ context.Context, ownerID string, weekStart time.Time) (*models.Timesheet, error) {
	for _, ts := range f.byID {
		if ts.OwnerID == ownerID && ts.WeekStart.Equal(weekStart) {
			copied := *ts
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTimesheetStore) Upsert(_ context.Context, ts *models.Timesheet) error {
	f.upserted = ts
	return nil
}

func (f *fakeTimesheetStore) MarkSubmitted(_ context.Context, id string, at time.Time) (bool, error) {
	if !f.submitApplied {
		return false, nil
	}
	if ts, ok := f.byID[id]; ok {
		ts.Status = models.StatusSubmitted
		ts.SubmittedAt = &at
	}
	return true, nil
}

func (f *fakeTimesheetStore) MarkReviewed(_ context.Context, id string, decision models.TimesheetStatus, reviewerID string, at time.Time, rejectionReason *string) (bool, error) {
	if !f.reviewApplied {
		return false, nil
	}
	if ts, ok := f.byID[id]; ok {
		ts.Status = decision
		ts.ReviewerID = &reviewerID
		ts.ReviewedAt = &at
		ts.RejectionReason = rejectionReason
	}
	return true, nil
}

func (f *fakeTimesheetStore) List(_ context.Context, filter models.TimesheetFilter) ([]models.Timesheet, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

type fakeScopeProvider struct {
	scope models.RecordScope
	err   error
}

func (f *fakeScopeProvider) ScopeFor(context.Context, models.Identity) (models.RecordScope, error) {
	return f.scope, f.err
}

type stubInvalidator struct {
	calls int
}

func (s *stubInvalidator) InvalidateAnalytics(context.Context) {
	s.calls++
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func weekOf(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func standardWeekEntries() []models.TimeEntry {
	entries := make([]models.TimeEntry, 0, 5)
	for i := 0; i < 5; i++ {
		entries = append(entries, models.TimeEntry{
			Date:            weekOf(2025, 3, 10+i),
			Hours:           8,
			ProjectName:     "Atlas",
			TaskDescription: "Implementation",
			Status:          models.EntryCompleted,
		})
	}
	return entries
}

func TestValidateEntries(t *testing.T) {
	base := models.TimeEntry{
		Date:            weekOf(2025, 3, 10),
		Hours:           8,
		ProjectName:     "Atlas",
		TaskDescription: "Implementation",
	}

	t.Run("defaults missing entry status to completed", func(t *testing.T) {
		validated, err := ValidateEntries([]models.TimeEntry{base})
		require.NoError(t, err)
		assert.Equal(t, models.EntryCompleted, validated[0].Status)
	})

	t.Run("rejects hours above 24", func(t *testing.T) {
		entry := base
		entry.Hours = 25
		_, err := ValidateEntries([]models.TimeEntry{entry})
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	})

	t.Run("rejects negative hours", func(t *testing.T) {
		entry := base
		entry.Hours = -1
		_, err := ValidateEntries([]models.TimeEntry{entry})
		require.Error(t, err)
	})

	t.Run("allows zero hours", func(t *testing.T) {
		entry := base
		entry.Hours = 0
		_, err := ValidateEntries([]models.TimeEntry{entry})
		assert.NoError(t, err)
	})

	t.Run("rejects missing project", func(t *testing.T) {
		entry := base
		entry.ProjectName = ""
		_, err := ValidateEntries([]models.TimeEntry{entry})
		require.Error(t, err)
	})

	t.Run("rejects unknown entry status", func(t *testing.T) {
		entry := base
		entry.Status = "paused"
		_, err := ValidateEntries([]models.TimeEntry{entry})
		require.Error(t, err)
	})
}

func TestCreateOrReplaceNormalisesWeekAndTotals(t *testing.T) {
	store := &fakeTimesheetStore{}
	cache := &stubInvalidator{}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, cache, zap.NewNop())

	// Wednesday input lands on the Monday of the same week.
	wednesday := weekOf(2025, 3, 12)
	ts, err := svc.CreateOrReplace(context.Background(), "emp-1", wednesday, standardWeekEntries())
	require.NoError(t, err)

	assert.Equal(t, weekOf(2025, 3, 10), ts.WeekStart)
	assert.Equal(t, weekOf(2025, 3, 16), ts.WeekEnd)
	assert.Equal(t, 40.0, ts.TotalHours)
	assert.Equal(t, models.StatusDraft, ts.Status)
	require.NotNil(t, store.upserted)
	assert.Equal(t, 1, cache.calls)
}

func TestCreateOrReplaceRejectsInvalidEntries(t *testing.T) {
	store := &fakeTimesheetStore{}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	entries := []models.TimeEntry{{Date: weekOf(2025, 3, 10), Hours: 30, ProjectName: "Atlas", TaskDescription: "x"}}
	_, err := svc.CreateOrReplace(context.Background(), "emp-1", weekOf(2025, 3, 10), entries)
	require.Error(t, err)
	assert.Nil(t, store.upserted)
}

func TestSubmitHappyPath(t *testing.T) {
	now := time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC)
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusDraft},
		},
		submitApplied: true,
	}
	cache := &stubInvalidator{}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, cache, zap.NewNop())
	svc.now = fixedClock(now)

	ts, err := svc.Submit(context.Background(), "ts-1", "emp-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, ts.Status)
	require.NotNil(t, ts.SubmittedAt)
	assert.Equal(t, now, *ts.SubmittedAt)
	assert.Equal(t, 1, cache.calls)
}

func TestSubmitRejectsNonOwner(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusDraft},
		},
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "ts-1", "emp-2")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestSubmitRejectsNonDraft(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusSubmitted},
		},
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "ts-1", "emp-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
	assert.Contains(t, err.Error(), "submitted")
}

func TestSubmitLosesRaceToConcurrentTransition(t *testing.T) {
	// The read sees draft but the conditional update applies nothing.
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusDraft},
		},
		submitApplied: false,
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "ts-1", "emp-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestSubmitNotFound(t *testing.T) {
	svc := NewTimesheetService(&fakeTimesheetStore{}, &fakeScopeProvider{}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "missing", "emp-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestReviewApprove(t *testing.T) {
	now := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusSubmitted},
		},
		reviewApplied: true,
	}
	cache := &stubInvalidator{}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, cache, zap.NewNop())
	svc.now = fixedClock(now)

	reviewer := models.Identity{UserID: "mgr-1", Role: models.RoleManager}
	ts, err := svc.Review(context.Background(), "ts-1", reviewer, models.StatusApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, ts.Status)
	require.NotNil(t, ts.ReviewerID)
	assert.Equal(t, "mgr-1", *ts.ReviewerID)
	assert.Nil(t, ts.RejectionReason)
	assert.Equal(t, 1, cache.calls)
}

func TestReviewRejectStoresReason(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusSubmitted},
		},
		reviewApplied: true,
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	reason := "hours do not match the project log"
	reviewer := models.Identity{UserID: "mgr-1", Role: models.RoleManager}
	ts, err := svc.Review(context.Background(), "ts-1", reviewer, models.StatusRejected, &reason)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, ts.Status)
	require.NotNil(t, ts.RejectionReason)
	assert.Equal(t, reason, *ts.RejectionReason)
}

func TestReviewDropsReasonOnApproval(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusSubmitted},
		},
		reviewApplied: true,
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	reason := "should not be stored"
	reviewer := models.Identity{UserID: "mgr-1", Role: models.RoleManager}
	ts, err := svc.Review(context.Background(), "ts-1", reviewer, models.StatusApproved, &reason)
	require.NoError(t, err)
	assert.Nil(t, ts.RejectionReason)
}

func TestReviewRejectsInvalidDecision(t *testing.T) {
	svc := NewTimesheetService(&fakeTimesheetStore{}, &fakeScopeProvider{}, nil, zap.NewNop())

	reviewer := models.Identity{UserID: "mgr-1", Role: models.RoleManager}
	_, err := svc.Review(context.Background(), "ts-1", reviewer, models.StatusDraft, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReviewRefusesSelfReview(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "mgr-1", Status: models.StatusSubmitted},
		},
		reviewApplied: true,
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	reviewer := models.Identity{UserID: "mgr-1", Role: models.RoleManager}
	_, err := svc.Review(context.Background(), "ts-1", reviewer, models.StatusApproved, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestReviewRejectsNonSubmitted(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusApproved},
		},
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	reviewer := models.Identity{UserID: "mgr-1", Role: models.RoleManager}
	_, err := svc.Review(context.Background(), "ts-1", reviewer, models.StatusRejected, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
	assert.Contains(t, err.Error(), "approved")
}

func TestGetWeekNormalisesDate(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", WeekStart: weekOf(2025, 3, 10), Status: models.StatusDraft},
		},
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	// Thursday resolves to the Monday-keyed record.
	ts, err := svc.GetWeek(context.Background(), "emp-1", weekOf(2025, 3, 13))
	require.NoError(t, err)
	assert.Equal(t, "ts-1", ts.ID)
}

func TestGetWeekNotFound(t *testing.T) {
	svc := NewTimesheetService(&fakeTimesheetStore{}, &fakeScopeProvider{}, nil, zap.NewNop())

	_, err := svc.GetWeek(context.Background(), "emp-1", weekOf(2025, 3, 13))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestGetByIDOwnerAlwaysAllowed(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusDraft},
		},
	}
	// Scope provider would deny, but ownership wins without consulting it.
	svc := NewTimesheetService(store, &fakeScopeProvider{scope: models.ScopeOwners()}, nil, zap.NewNop())

	ts, err := svc.GetByID(context.Background(), "ts-1", models.Identity{UserID: "emp-1", Role: models.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, "ts-1", ts.ID)
}

func TestGetByIDOutsideScopeDenied(t *testing.T) {
	store := &fakeTimesheetStore{
		byID: map[string]*models.Timesheet{
			"ts-1": {ID: "ts-1", OwnerID: "emp-1", Status: models.StatusDraft},
		},
	}
	svc := NewTimesheetService(store, &fakeScopeProvider{scope: models.ScopeOwners("emp-9")}, nil, zap.NewNop())

	_, err := svc.GetByID(context.Background(), "ts-1", models.Identity{UserID: "emp-2", Role: models.RoleEmployee})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestListMineBuildsFilter(t *testing.T) {
	store := &fakeTimesheetStore{listed: []models.Timesheet{{ID: "ts-1"}}}
	svc := NewTimesheetService(store, &fakeScopeProvider{}, nil, zap.NewNop())

	from := weekOf(2025, 1, 6)
	timesheets, err := svc.ListMine(context.Background(), "emp-1", &from, nil)
	require.NoError(t, err)
	assert.Len(t, timesheets, 1)
	assert.Equal(t, []string{"emp-1"}, store.lastFilter.Scope.OwnerIDs)
	assert.Equal(t, "week_start", store.lastFilter.OrderBy)
	assert.True(t, store.lastFilter.OrderDesc)
}

func TestPendingUsesScopeAndSubmittedFilter(t *testing.T) {
	store := &fakeTimesheetStore{listed: []models.Timesheet{}}
	scope := &fakeScopeProvider{scope: models.ScopeOwners("emp-1", "emp-2")}
	svc := NewTimesheetService(store, scope, nil, zap.NewNop())

	_, err := svc.Pending(context.Background(), models.Identity{UserID: "mgr-1", Role: models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, []models.TimesheetStatus{models.StatusSubmitted}, store.lastFilter.Statuses)
	assert.Equal(t, []string{"emp-1", "emp-2"}, store.lastFilter.Scope.OwnerIDs)
	assert.Equal(t, "submitted_at", store.lastFilter.OrderBy)
}
