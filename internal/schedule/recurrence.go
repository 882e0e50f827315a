// Package schedule resolves recurring meetings to concrete dates and detects
// time conflicts between them.
package schedule

import (
	"cloud.google.com/go/civil"

	"github.com/rcliao/schedulizer/internal/model"
)

// ActualStart returns the first date on or after m.DateStart that falls on
// m.Weekday. Async meetings return DateStart unchanged.
func ActualStart(m model.Meeting) civil.Date {
	if m.IsAsync() {
		return m.DateStart
	}
	shift := (m.Weekday - model.Weekday(m.DateStart) + 7) % 7
	return m.DateStart.AddDays(shift)
}

// ActualEnd returns the last date on or before m.DateEnd that falls on
// m.Weekday. Async meetings return DateEnd unchanged.
func ActualEnd(m model.Meeting) civil.Date {
	if m.IsAsync() {
		return m.DateEnd
	}
	shift := (model.Weekday(m.DateEnd) - m.Weekday + 7) % 7
	return m.DateEnd.AddDays(-shift)
}

// OccurrenceCount returns how many times m takes place inside its window.
//
// Excluded weeks inside the window (a reading week, for example) are not
// subtracted, so the count overstates meetings that skip such weeks.
func OccurrenceCount(m model.Meeting) int {
	if m.RepeatDays == 0 {
		return 1
	}
	start, end := ActualStart(m), ActualEnd(m)
	if end.Before(start) {
		// window too short to contain the weekday
		return 0
	}
	return end.DaysSince(start)/m.RepeatDays + 1
}

// CourseOccurrences sums OccurrenceCount over every meeting of c.
func CourseOccurrences(c model.Course) int {
	total := 0
	for _, m := range c.ClassTime {
		total += OccurrenceCount(m)
	}
	return total
}
