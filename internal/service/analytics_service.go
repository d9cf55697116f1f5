package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/workpulse/timesheet-api/internal/models"
	appErrors "github.com/workpulse/timesheet-api/pkg/errors"
	"github.com/workpulse/timesheet-api/pkg/period"
)

// Classification thresholds applied to average weekly hours. First match
// wins, checked from the most severe tier down.
const (
	standardWeekHours = 40.0
	overtimeThreshold = 50.0
	burnoutThreshold  = 55.0
)

type timesheetLister interface {
	List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, error)
}

type userFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// AnalyticsService turns scoped timesheet snapshots into dashboard
// statistics, weekly trend series and risk-tiered overwork reports. All
// computations are pure over the fetched snapshot; windows are anchored on
// explicit reference times so results are deterministic.
type AnalyticsService struct {
	timesheets timesheetLister
	users      userFinder
	visibility scopeProvider
	cache      *CacheService
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(timesheets timesheetLister, users userFinder, visibility scopeProvider, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		timesheets: timesheets,
		users:      users,
		visibility: visibility,
		cache:      cache,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// DashboardStats aggregates the caller's visible timesheets for the given
// month. It is total over empty input: zero records yield zeroed stats
// with all four status counters present. The second return value reports
// cache utilisation.
func (s *AnalyticsService) DashboardStats(ctx context.Context, identity models.Identity, year int, month time.Month) (*models.DashboardStats, bool, error) {
	if year <= 0 || month < time.January || month > time.December {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid year or month")
	}

	cacheKey := fmt.Sprintf("%sdashboard:%s:%s:%d-%02d", AnalyticsCachePrefix, identity.Role, identity.UserID, year, month)
	var cached models.DashboardStats
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	scope, err := s.visibility.ScopeFor(ctx, identity)
	if err != nil {
		return nil, false, err
	}

	monthStart, monthEnd := period.MonthBounds(year, month)
	timesheets, err := s.timesheets.List(ctx, models.TimesheetFilter{
		Scope:         scope,
		WeekStartFrom: &monthStart,
		WeekStartTo:   &monthEnd,
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timesheets")
	}

	stats := &models.DashboardStats{
		TotalTimesheets: len(timesheets),
		StatusCounts:    zeroStatusCounts(),
		DepartmentHours: map[string]float64{},
	}

	var totalHours float64
	for _, ts := range timesheets {
		totalHours += ts.TotalHours
		if ts.Status.Valid() {
			stats.StatusCounts[ts.Status]++
		}
	}
	stats.TotalHours = round2(totalHours)
	if len(timesheets) > 0 {
		stats.AvgHoursPerWeek = round2(totalHours / float64(len(timesheets)))
	}

	departments, err := s.departmentsByOwner(ctx, timesheets)
	if err != nil {
		return nil, false, err
	}
	for _, ts := range timesheets {
		dept := departments[ts.OwnerID]
		if dept == "" {
			dept = "unknown"
		}
		stats.DepartmentHours[dept] = round2(stats.DepartmentHours[dept] + ts.TotalHours)
	}

	s.persistCache(ctx, cacheKey, stats)
	return stats, false, nil
}

// WeeklyTrend groups the caller's visible timesheets from the trailing
// window into per-week buckets, ascending by week start. Weeks without
// records are omitted, not zero-filled.
func (s *AnalyticsService) WeeklyTrend(ctx context.Context, identity models.Identity, weeks int, ref time.Time) ([]models.TrendPoint, bool, error) {
	if weeks <= 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "weeks must be positive")
	}

	cacheKey := fmt.Sprintf("%strend:%s:%s:%d:%s", AnalyticsCachePrefix, identity.Role, identity.UserID, weeks, ref.UTC().Format("2006-01-02"))
	var cached []models.TrendPoint
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	scope, err := s.visibility.ScopeFor(ctx, identity)
	if err != nil {
		return nil, false, err
	}

	windowStart := period.TrailingWeeks(ref, weeks)
	timesheets, err := s.timesheets.List(ctx, models.TimesheetFilter{
		Scope:         scope,
		WeekStartFrom: &windowStart,
		OrderBy:       "week_start",
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timesheets")
	}

	buckets := map[string]*models.TrendPoint{}
	for _, ts := range timesheets {
		key := period.WeekKey(ts.WeekStart)
		point, ok := buckets[key]
		if !ok {
			point = &models.TrendPoint{Week: key}
			buckets[key] = point
		}
		point.TotalHours += ts.TotalHours
		point.TimesheetCount++
	}

	trend := make([]models.TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		point.TotalHours = round2(point.TotalHours)
		trend = append(trend, *point)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Week < trend[j].Week })

	s.persistCache(ctx, cacheKey, trend)
	return trend, false, nil
}

// DetectOverworked classifies the caller's visible employees by average
// weekly hours over the trailing window. Only submitted and approved
// sheets count: drafts and rejections are not confirmed hours. The report
// is ordered by tier severity, then average hours descending.
func (s *AnalyticsService) DetectOverworked(ctx context.Context, identity models.Identity, weeks int, ref time.Time) (*models.OverworkReport, bool, error) {
	if weeks <= 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "weeks must be positive")
	}

	cacheKey := fmt.Sprintf("%soverwork:%s:%s:%d:%s", AnalyticsCachePrefix, identity.Role, identity.UserID, weeks, ref.UTC().Format("2006-01-02"))
	var cached models.OverworkReport
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	scope, err := s.visibility.ScopeFor(ctx, identity)
	if err != nil {
		return nil, false, err
	}

	windowStart := period.TrailingWeeks(ref, weeks)
	timesheets, err := s.timesheets.List(ctx, models.TimesheetFilter{
		Scope:         scope,
		WeekStartFrom: &windowStart,
		Statuses:      []models.TimesheetStatus{models.StatusSubmitted, models.StatusApproved},
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timesheets")
	}

	type ownerAccumulator struct {
		totalHours float64
		weeks      []models.WeekHours
	}
	perOwner := map[string]*ownerAccumulator{}
	for _, ts := range timesheets {
		acc, ok := perOwner[ts.OwnerID]
		if !ok {
			acc = &ownerAccumulator{}
			perOwner[ts.OwnerID] = acc
		}
		acc.totalHours += ts.TotalHours
		acc.weeks = append(acc.weeks, models.WeekHours{
			WeekStart: period.WeekKey(ts.WeekStart),
			Hours:     ts.TotalHours,
		})
	}

	ownerIDs := make([]string, 0, len(perOwner))
	for id := range perOwner {
		ownerIDs = append(ownerIDs, id)
	}
	users, err := s.usersByID(ctx, ownerIDs)
	if err != nil {
		return nil, false, err
	}

	report := &models.OverworkReport{
		Analyzed:  len(perOwner),
		Employees: []models.OverworkAssessment{},
	}
	for ownerID, acc := range perOwner {
		weekCount := len(acc.weeks)
		avg := acc.totalHours / float64(weekCount)
		risk, suggestions := classifyRisk(avg)
		if risk == models.RiskNormal {
			continue
		}

		var maxWeek float64
		for _, week := range acc.weeks {
			if week.Hours > maxWeek {
				maxWeek = week.Hours
			}
		}

		assessment := models.OverworkAssessment{
			User:            users[ownerID],
			TotalHours:      round2(acc.totalHours),
			WeekCount:       weekCount,
			AvgHoursPerWeek: round2(avg),
			MaxWeekHours:    maxWeek,
			Risk:            risk,
			Suggestions:     suggestions,
			WeeksAnalyzed:   acc.weeks,
		}
		report.Employees = append(report.Employees, assessment)
	}

	sort.SliceStable(report.Employees, func(i, j int) bool {
		a, b := report.Employees[i], report.Employees[j]
		if a.Risk.Rank() != b.Risk.Rank() {
			return a.Risk.Rank() < b.Risk.Rank()
		}
		return a.AvgHoursPerWeek > b.AvgHoursPerWeek
	})
	report.Overworked = len(report.Employees)

	s.persistCache(ctx, cacheKey, report)
	return report, false, nil
}

// classifyRisk maps average weekly hours onto a risk tier with its fixed
// advisory texts. Thresholds are deliberately not configurable.
func classifyRisk(avgHoursPerWeek float64) (models.RiskTier, []string) {
	switch {
	case avgHoursPerWeek > burnoutThreshold:
		return models.RiskCritical, []string{
			"Immediate intervention required",
			"Consider redistributing workload",
			"Schedule mandatory time off",
		}
	case avgHoursPerWeek > overtimeThreshold:
		return models.RiskHigh, []string{
			"Monitor closely for burnout signs",
			"Review project assignments",
			"Encourage work-life balance",
		}
	case avgHoursPerWeek > standardWeekHours+5:
		return models.RiskModerate, []string{
			"Slight overtime detected",
			"Check if additional resources needed",
		}
	}
	return models.RiskNormal, nil
}

func (s *AnalyticsService) departmentsByOwner(ctx context.Context, timesheets []models.Timesheet) (map[string]string, error) {
	ownerSet := map[string]struct{}{}
	for _, ts := range timesheets {
		ownerSet[ts.OwnerID] = struct{}{}
	}
	ownerIDs := make([]string, 0, len(ownerSet))
	for id := range ownerSet {
		ownerIDs = append(ownerIDs, id)
	}
	users, err := s.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owners")
	}
	departments := make(map[string]string, len(users))
	for _, user := range users {
		departments[user.ID] = user.Department
	}
	return departments, nil
}

func (s *AnalyticsService) usersByID(ctx context.Context, ownerIDs []string) (map[string]models.UserInfo, error) {
	users, err := s.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owners")
	}
	infos := make(map[string]models.UserInfo, len(users))
	for _, user := range users {
		infos[user.ID] = models.UserInfo{
			ID:         user.ID,
			Email:      user.Email,
			FullName:   user.FullName,
			Role:       user.Role,
			Department: user.Department,
		}
	}
	return infos, nil
}

func (s *AnalyticsService) persistCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func zeroStatusCounts() map[models.TimesheetStatus]int {
	counts := make(map[models.TimesheetStatus]int, len(models.AllTimesheetStatuses))
	for _, status := range models.AllTimesheetStatuses {
		counts[status] = 0
	}
	return counts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
