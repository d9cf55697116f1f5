// Package period holds the calendar arithmetic shared by the timesheet
// workflow and the analytics queries. Weeks run Monday through Sunday.
package period

import "time"

// WeekStart normalises t to the Monday of its ISO week, truncated to
// midnight UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday closing the week opened by weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// WeekKey renders a week-start date as the stable YYYY-MM-DD bucket key
// used by trend grouping.
func WeekKey(weekStart time.Time) string {
	return weekStart.UTC().Format("2006-01-02")
}

// MonthBounds returns the first and last instant of the given month in UTC.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// TrailingWeeks returns the start of the window covering the given number
// of weeks before the reference time.
func TrailingWeeks(ref time.Time, weeks int) time.Time {
	return ref.UTC().AddDate(0, 0, -weeks*7)
}
