package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/workpulse/timesheet-api/internal/models"
)

const timesheetColumns = "id, owner_id, week_start, week_end, entries, total_hours, status, submitted_at, reviewed_at, reviewer_id, rejection_reason, created_at, updated_at"

// TimesheetRepository provides database access for weekly timesheets.
type TimesheetRepository struct {
	db *sqlx.DB
}

// NewTimesheetRepository creates a new instance of TimesheetRepository.
func NewTimesheetRepository(db *sqlx.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

// FindByID returns a timesheet by identifier.
func (r *TimesheetRepository) FindByID(ctx context.Context, id string) (*models.Timesheet, error) {
	query := fmt.Sprintf("SELECT %s FROM timesheets WHERE id = $1 LIMIT 1", timesheetColumns)
	var ts models.Timesheet
	if err := r.db.GetContext(ctx, &ts, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find timesheet by id: %w", err)
	}
	return &ts, nil
}

// FindByOwnerAndWeek returns the single timesheet for an (owner, week start)
// pair.
func (r *TimesheetRepository) FindByOwnerAndWeek(ctx context.Context, ownerID string, weekStart time.Time) (*models.Timesheet, error) {
	query := fmt.Sprintf("SELECT %s FROM timesheets WHERE owner_id = $1 AND week_start = $2 LIMIT 1", timesheetColumns)
	var ts models.Timesheet
	if err := r.db.GetContext(ctx, &ts, query, ownerID, weekStart); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find timesheet by owner and week: %w", err)
	}
	return &ts, nil
}

// Upsert inserts the timesheet or, when a row already exists for the same
// (owner, week start), replaces its entries wholesale and forces the status
// back to draft, clearing any prior review metadata.
func (r *TimesheetRepository) Upsert(ctx context.Context, ts *models.Timesheet) error {
	if ts.ID == "" {
		ts.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ts.CreatedAt.IsZero() {
		ts.CreatedAt = now
	}
	ts.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO timesheets (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, NULL, NULL, NULL, $8, $9)
		ON CONFLICT (owner_id, week_start) DO UPDATE SET
			entries = EXCLUDED.entries,
			total_hours = EXCLUDED.total_hours,
			status = EXCLUDED.status,
			submitted_at = NULL,
			reviewed_at = NULL,
			reviewer_id = NULL,
			rejection_reason = NULL,
			updated_at = EXCLUDED.updated_at
		RETURNING %s`, timesheetColumns, timesheetColumns)

	if err := r.db.QueryRowxContext(ctx, query,
		ts.ID, ts.OwnerID, ts.WeekStart, ts.WeekEnd, ts.Entries, ts.TotalHours, ts.Status,
		ts.CreatedAt, ts.UpdatedAt,
	).StructScan(ts); err != nil {
		return fmt.Errorf("upsert timesheet: %w", err)
	}
	return nil
}

// MarkSubmitted transitions a draft timesheet to submitted. It returns
// false when the row was not in draft, so concurrent submits cannot both
// apply.
func (r *TimesheetRepository) MarkSubmitted(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE timesheets SET status = $2, submitted_at = $3, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, id, models.StatusSubmitted, at, models.StatusDraft)
	if err != nil {
		return false, fmt.Errorf("mark timesheet submitted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark timesheet submitted: %w", err)
	}
	return affected == 1, nil
}

// MarkReviewed transitions a submitted timesheet to approved or rejected,
// recording the reviewer and timestamp. The conditional status guard makes
// the second of two racing reviews lose.
func (r *TimesheetRepository) MarkReviewed(ctx context.Context, id string, decision models.TimesheetStatus, reviewerID string, at time.Time, rejectionReason *string) (bool, error) {
	const query = `UPDATE timesheets SET status = $2, reviewer_id = $3, reviewed_at = $4, rejection_reason = $5, updated_at = $4 WHERE id = $1 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, id, decision, reviewerID, at, rejectionReason, models.StatusSubmitted)
	if err != nil {
		return false, fmt.Errorf("mark timesheet reviewed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark timesheet reviewed: %w", err)
	}
	return affected == 1, nil
}

// List returns timesheets matching the filter. An empty (non-all) scope
// matches nothing and short-circuits without querying.
func (r *TimesheetRepository) List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, error) {
	if filter.Scope.Empty() {
		return []models.Timesheet{}, nil
	}

	var conditions []string
	var args []interface{}

	if !filter.Scope.All {
		conditions = append(conditions, fmt.Sprintf("owner_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Scope.OwnerIDs))
	}
	if filter.WeekStartFrom != nil {
		conditions = append(conditions, fmt.Sprintf("week_start >= $%d", len(args)+1))
		args = append(args, *filter.WeekStartFrom)
	}
	if filter.WeekStartTo != nil {
		conditions = append(conditions, fmt.Sprintf("week_start <= $%d", len(args)+1))
		args = append(args, *filter.WeekStartTo)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(statuses))
	}

	query := fmt.Sprintf("SELECT %s FROM timesheets", timesheetColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := filter.OrderBy
	allowedSorts := map[string]bool{
		"week_start":   true,
		"submitted_at": true,
		"updated_at":   true,
	}
	if !allowedSorts[orderBy] {
		orderBy = "week_start"
	}
	direction := "ASC"
	if filter.OrderDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", orderBy, direction)

	timesheets := []models.Timesheet{}
	if err := r.db.SelectContext(ctx, &timesheets, query, args...); err != nil {
		return nil, fmt.Errorf("list timesheets: %w", err)
	}
	return timesheets, nil
}
