package model

import "time"

// UniversalEvent is a semester-wide event added to every generated
// calendar, such as a reading week.
type UniversalEvent struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Semester holds the calendar window and universal events of one term.
type Semester struct {
	Name            string           `json:"name"`
	TermID          string           `json:"term_id"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	Timezone        string           `json:"timezone,omitempty"`
	UniversalEvents []UniversalEvent `json:"universal_events"`
}

// Contains reports whether [start, end] lies inside the semester window.
// Both window bounds are inclusive.
func (s Semester) Contains(start, end time.Time) bool {
	return !start.Before(s.Start) && !end.After(s.End)
}

// Location returns the zone semester times are expressed in.
func (s Semester) Location() *time.Location {
	if s.Start.IsZero() {
		return time.UTC
	}
	return s.Start.Location()
}
