package models

// DashboardStats summarises the timesheets visible to the caller within a
// month window. StatusCounts always carries all four workflow states.
type DashboardStats struct {
	TotalTimesheets int                     `json:"total_timesheets"`
	TotalHours      float64                 `json:"total_hours"`
	AvgHoursPerWeek float64                 `json:"avg_hours_per_week"`
	StatusCounts    map[TimesheetStatus]int `json:"status_counts"`
	DepartmentHours map[string]float64      `json:"department_hours"`
}

// TrendPoint is one week's bucket in the weekly trend series. Week is the
// YYYY-MM-DD week-start key.
type TrendPoint struct {
	Week           string  `json:"week"`
	TotalHours     float64 `json:"total_hours"`
	TimesheetCount int     `json:"timesheet_count"`
}

// RiskTier classifies an employee's average weekly hours over a trailing
// window.
type RiskTier string

const (
	RiskNormal   RiskTier = "normal"
	RiskModerate RiskTier = "moderate"
	RiskHigh     RiskTier = "high"
	RiskCritical RiskTier = "critical"
)

// Rank orders tiers for presentation, most severe first. Unknown tiers
// sort last.
func (r RiskTier) Rank() int {
	switch r {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	case RiskModerate:
		return 2
	}
	return 3
}

// WeekHours records a single in-window week contributing to an assessment.
type WeekHours struct {
	WeekStart string  `json:"week_start"`
	Hours     float64 `json:"hours"`
}

// OverworkAssessment is the derived per-employee risk report. It is never
// persisted.
type OverworkAssessment struct {
	User            UserInfo    `json:"user"`
	TotalHours      float64     `json:"total_hours"`
	WeekCount       int         `json:"week_count"`
	AvgHoursPerWeek float64     `json:"avg_hours_per_week"`
	MaxWeekHours    float64     `json:"max_week_hours"`
	Risk            RiskTier    `json:"risk"`
	Suggestions     []string    `json:"suggestions"`
	WeeksAnalyzed   []WeekHours `json:"weeks_analyzed"`
}

// OverworkReport wraps the ranked assessments with analysis counts.
type OverworkReport struct {
	Analyzed   int                  `json:"analyzed"`
	Overworked int                  `json:"overworked"`
	Employees  []OverworkAssessment `json:"employees"`
}
