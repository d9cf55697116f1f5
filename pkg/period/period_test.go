package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekStart(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "monday stays put",
			in:   time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday rolls back to monday",
			in:   time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the preceding monday",
			in:   time.Date(2025, 3, 16, 23, 59, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "crosses a month boundary",
			in:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "crosses a year boundary",
			in:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WeekStart(tc.in))
		})
	}
}

func TestWeekStartNormalisesTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	in := time.Date(2025, 3, 10, 2, 0, 0, 0, loc)
	// 02:00 UTC+7 on Monday is still Sunday 19:00 UTC.
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), WeekStart(in))
}

func TestWeekEnd(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), WeekEnd(start))
}

func TestWeekKey(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", WeekKey(start))
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2025, time.February)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.True(t, end.Before(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.February, end.Month())
}

func TestTrailingWeeks(t *testing.T) {
	ref := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), TrailingWeeks(ref, 4))
}
