package service

import (
	"context"

	"github.com/workpulse/timesheet-api/internal/models"
	appErrors "github.com/workpulse/timesheet-api/pkg/errors"
)

type directReportLister interface {
	FindManagedBy(ctx context.Context, managerID string) ([]models.User, error)
}

// VisibilityService derives the record scope for a caller. It is the
// single source of truth for data isolation: every read path (dashboard,
// trend, overwork, pending review, exports) asks it for the scope instead
// of re-deriving role branches per call site.
type VisibilityService struct {
	users directReportLister
}

// NewVisibilityService constructs a VisibilityService.
func NewVisibilityService(users directReportLister) *VisibilityService {
	return &VisibilityService{users: users}
}

// ScopeFor maps the caller's role onto a record scope. Employees see only
// their own records, managers see their direct reports (not transitive),
// admins see everything.
func (s *VisibilityService) ScopeFor(ctx context.Context, identity models.Identity) (models.RecordScope, error) {
	switch identity.Role {
	case models.RoleAdmin:
		return models.ScopeAll(), nil
	case models.RoleManager:
		reports, err := s.users.FindManagedBy(ctx, identity.UserID)
		if err != nil {
			return models.RecordScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve direct reports")
		}
		ownerIDs := make([]string, 0, len(reports))
		for _, report := range reports {
			ownerIDs = append(ownerIDs, report.ID)
		}
		return models.ScopeOwners(ownerIDs...), nil
	case models.RoleEmployee:
		return models.ScopeOwners(identity.UserID), nil
	}
	return models.RecordScope{}, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
}
