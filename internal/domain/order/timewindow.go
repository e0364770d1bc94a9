package order

import "time"

// TimeWindow is a predefined reporting bucket anchored to UTC calendar
// boundaries.
type TimeWindow string

const (
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

// ParseTimeWindow maps a request value to a TimeWindow. Unknown values fall
// back to WindowDay.
func ParseTimeWindow(s string) TimeWindow {
	switch TimeWindow(s) {
	case WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll:
		return TimeWindow(s)
	default:
		return WindowDay
	}
}

// Start returns the inclusive lower bound of the window relative to now,
// computed on UTC calendar boundaries. The second return value is false for
// WindowAll, which has no lower bound.
//
// Week starts on the most recent Sunday at 00:00 UTC.
func (w TimeWindow) Start(now time.Time) (time.Time, bool) {
	now = now.UTC()
	switch w {
	case WindowWeek:
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -int(now.Weekday())), true
	case WindowMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), true
	case WindowYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), true
	case WindowAll:
		return time.Time{}, false
	default:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
}
