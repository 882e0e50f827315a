// Package model defines the course and meeting data types.
package model

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Weekday values follow Monday = 0 ... Sunday = 6. Async marks a meeting
// with no fixed day.
const (
	Monday    = 0
	Tuesday   = 1
	Wednesday = 2
	Thursday  = 3
	Friday    = 4
	Saturday  = 5
	Sunday    = 6
	Async     = -1
)

// WeekdayNames maps weekday values to their lowercase English names.
var WeekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ErrInvalidMeeting is wrapped by every meeting validation failure.
var ErrInvalidMeeting = errors.New("invalid meeting")

// ValidationError describes which meeting field failed validation.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid meeting: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidMeeting }

// Meeting is one repeating time slot of a course section. Values are only
// produced by NewMeeting or the decoders built on it, and never mutated.
type Meeting struct {
	TimeStart  civil.Time
	TimeEnd    civil.Time
	Weekday    int
	DateStart  civil.Date
	DateEnd    civil.Date
	RepeatDays int // 0 means a single occurrence
	Location   string
}

// MeetingParams holds the raw fields for NewMeeting.
type MeetingParams struct {
	TimeStart  civil.Time
	TimeEnd    civil.Time
	Weekday    int
	DateStart  civil.Date
	DateEnd    civil.Date
	RepeatDays int
	Location   string
}

// NewMeeting validates p and returns the meeting it describes.
func NewMeeting(p MeetingParams) (Meeting, error) {
	m := Meeting(p)
	if err := m.Validate(); err != nil {
		return Meeting{}, err
	}
	return m, nil
}

// Validate checks the meeting invariants.
func (m Meeting) Validate() error {
	switch {
	case m.Weekday < Async || m.Weekday > Sunday:
		return &ValidationError{Field: "weekday_int", Value: m.Weekday, Reason: "must be in [-1, 6]"}
	case !m.TimeStart.IsValid():
		return &ValidationError{Field: "time_start", Value: m.TimeStart, Reason: "not a valid time of day"}
	case !m.TimeEnd.IsValid():
		return &ValidationError{Field: "time_end", Value: m.TimeEnd, Reason: "not a valid time of day"}
	case !m.DateStart.IsValid():
		return &ValidationError{Field: "date_start", Value: m.DateStart, Reason: "not a valid date"}
	case !m.DateEnd.IsValid():
		return &ValidationError{Field: "date_end", Value: m.DateEnd, Reason: "not a valid date"}
	case m.DateStart.After(m.DateEnd):
		return &ValidationError{Field: "date_start", Value: m.DateStart, Reason: "after date_end " + m.DateEnd.String()}
	case ClockOffset(m.TimeStart) > ClockOffset(m.TimeEnd):
		return &ValidationError{Field: "time_start", Value: m.TimeStart, Reason: "after time_end " + m.TimeEnd.String()}
	case m.RepeatDays < 0:
		return &ValidationError{Field: "repeat_timedelta_days", Value: m.RepeatDays, Reason: "must not be negative"}
	case m.RepeatDays > 0 && m.Weekday == Async:
		return &ValidationError{Field: "weekday_int", Value: m.Weekday, Reason: "repeating meetings need a weekday"}
	}
	return nil
}

// IsAsync reports whether the meeting has no fixed weekday.
func (m Meeting) IsAsync() bool { return m.Weekday == Async }

// Weekday returns d's weekday in the Monday = 0 convention.
func Weekday(d civil.Date) int {
	return (int(d.In(time.UTC).Weekday()) + 6) % 7
}

// ClockOffset returns the time elapsed since midnight at t.
func ClockOffset(t civil.Time) time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Nanosecond)
}

// At combines a date and a time of day into a wall-clock instant in loc.
func At(d civil.Date, t civil.Time, loc *time.Location) time.Time {
	return civil.DateTime{Date: d, Time: t}.In(loc)
}
