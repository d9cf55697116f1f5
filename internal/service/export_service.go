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
	"github.com/workpulse/timesheet-api/pkg/export"
	"github.com/workpulse/timesheet-api/pkg/period"
)

type exportTimesheetStore interface {
	FindByID(ctx context.Context, id string) (*models.Timesheet, error)
	List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, error)
}

// ExportService renders scoped timesheet data into CSV and PDF documents.
type ExportService struct {
	timesheets exportTimesheetStore
	users      userFinder
	visibility scopeProvider
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(timesheets exportTimesheetStore, users userFinder, visibility scopeProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timesheets: timesheets,
		users:      users,
		visibility: visibility,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

var csvHeaders = []string{"Employee", "Department", "Week Start", "Week End", "Date", "Project", "Task", "Hours", "Status", "Total Hours"}

// EntriesCSV flattens the timesheets in the window into one CSV row per
// entry, with the record total carried on its first row. Without an
// explicit target the caller exports their own records; a target outside
// the caller's scope is refused.
func (s *ExportService) EntriesCSV(ctx context.Context, identity models.Identity, from, to *time.Time, targetUserID string) ([]byte, error) {
	scope := models.ScopeOwners(identity.UserID)
	if targetUserID != "" && targetUserID != identity.UserID {
		callerScope, err := s.visibility.ScopeFor(ctx, identity)
		if err != nil {
			return nil, err
		}
		if !callerScope.Matches(targetUserID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "target user is outside your scope")
		}
		scope = models.ScopeOwners(targetUserID)
	}

	timesheets, err := s.timesheets.List(ctx, models.TimesheetFilter{
		Scope:         scope,
		WeekStartFrom: from,
		WeekStartTo:   to,
		OrderBy:       "week_start",
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timesheets")
	}

	owners, err := s.ownerInfo(ctx, timesheets)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: csvHeaders}
	for _, ts := range timesheets {
		owner := owners[ts.OwnerID]
		for i, entry := range ts.Entries {
			row := map[string]string{
				"Employee":   owner.FullName,
				"Department": owner.Department,
				"Week Start": period.WeekKey(ts.WeekStart),
				"Week End":   period.WeekKey(ts.WeekEnd),
				"Date":       entry.Date.UTC().Format("2006-01-02"),
				"Project":    entry.ProjectName,
				"Task":       entry.TaskDescription,
				"Hours":      formatHours(entry.Hours),
				"Status":     string(entry.Status),
			}
			if i == 0 {
				row["Total Hours"] = formatHours(ts.TotalHours)
			}
			dataset.Rows = append(dataset.Rows, row)
		}
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// TimesheetPDF renders one timesheet as a PDF report with owner details
// and the reviewer footer when the sheet has been reviewed.
func (s *ExportService) TimesheetPDF(ctx context.Context, identity models.Identity, recordID string) ([]byte, error) {
	ts, err := s.timesheets.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timesheet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch timesheet")
	}

	if ts.OwnerID != identity.UserID {
		scope, err := s.visibility.ScopeFor(ctx, identity)
		if err != nil {
			return nil, err
		}
		if !scope.Matches(ts.OwnerID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "access denied")
		}
	}

	ids := []string{ts.OwnerID}
	if ts.ReviewerID != nil {
		ids = append(ids, *ts.ReviewerID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	owner := byID[ts.OwnerID]

	doc := export.Document{
		Title: "Timesheet Report",
		Info: []export.InfoLine{
			{Label: "Employee", Value: owner.FullName},
			{Label: "Email", Value: owner.Email},
			{Label: "Department", Value: owner.Department},
			{Label: "Week", Value: fmt.Sprintf("%s - %s", period.WeekKey(ts.WeekStart), period.WeekKey(ts.WeekEnd))},
			{Label: "Status", Value: string(ts.Status)},
			{Label: "Total Hours", Value: formatHours(ts.TotalHours)},
		},
		Table: export.Dataset{Headers: []string{"Date", "Project", "Task", "Hours", "Status"}},
	}
	for _, entry := range ts.Entries {
		doc.Table.Rows = append(doc.Table.Rows, map[string]string{
			"Date":    entry.Date.UTC().Format("2006-01-02"),
			"Project": entry.ProjectName,
			"Task":    entry.TaskDescription,
			"Hours":   formatHours(entry.Hours),
			"Status":  string(entry.Status),
		})
	}
	if ts.ReviewerID != nil {
		reviewer := byID[*ts.ReviewerID]
		doc.Footer = append(doc.Footer, fmt.Sprintf("Reviewed by: %s", reviewer.FullName))
		if ts.ReviewedAt != nil {
			doc.Footer = append(doc.Footer, fmt.Sprintf("Reviewed on: %s", ts.ReviewedAt.UTC().Format("2006-01-02")))
		}
	}

	payload, err := s.pdf.Render(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

func (s *ExportService) ownerInfo(ctx context.Context, timesheets []models.Timesheet) (map[string]models.User, error) {
	ownerSet := map[string]struct{}{}
	for _, ts := range timesheets {
		ownerSet[ts.OwnerID] = struct{}{}
	}
	ids := make([]string, 0, len(ownerSet))
	for id := range ownerSet {
		ids = append(ids, id)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owners")
	}
	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}

func formatHours(hours float64) string {
	return fmt.Sprintf("%g", hours)
}
