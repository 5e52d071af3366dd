package entitlement

import "time"

// RollingWeek is the length of the weekly audit window
const RollingWeek = 7 * 24 * time.Hour

// RollingWeekStart returns the inclusive lower bound of the rolling week ending at now
func RollingWeekStart(now time.Time) time.Time {
	return now.Add(-RollingWeek)
}

// CalendarDayStart returns local midnight of the day containing now.
// A nil location means time.Local.
func CalendarDayStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// WindowStart returns the inclusive lower bound of window at now
func WindowStart(w Window, now time.Time, loc *time.Location) time.Time {
	switch w {
	case WindowCalendarDay:
		return CalendarDayStart(now, loc)
	default:
		return RollingWeekStart(now)
	}
}
