package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
)

// meetingJSON is the compact storage form of a Meeting. Field names match
// the records written by earlier versions of the course store.
type meetingJSON struct {
	TimeStart  *string `json:"time_start"`
	TimeEnd    *string `json:"time_end"`
	Weekday    *int    `json:"weekday_int"`
	DateStart  *string `json:"date_start"`
	DateEnd    *string `json:"date_end"`
	RepeatDays *int    `json:"repeat_timedelta_days"`
	Location   *string `json:"location"`
}

// MarshalJSON encodes the meeting in its compact storage form.
func (m Meeting) MarshalJSON() ([]byte, error) {
	ts, te := m.TimeStart.String(), m.TimeEnd.String()
	ds, de := m.DateStart.String(), m.DateEnd.String()
	return json.Marshal(meetingJSON{
		TimeStart:  &ts,
		TimeEnd:    &te,
		Weekday:    &m.Weekday,
		DateStart:  &ds,
		DateEnd:    &de,
		RepeatDays: &m.RepeatDays,
		Location:   &m.Location,
	})
}

// UnmarshalJSON decodes the compact storage form. Every field is required
// and the result is validated as in NewMeeting.
func (m *Meeting) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var raw meetingJSON
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode meeting: %w", err)
	}

	missing := func(field string) error {
		return &ValidationError{Field: field, Value: nil, Reason: "missing"}
	}
	switch {
	case raw.TimeStart == nil:
		return missing("time_start")
	case raw.TimeEnd == nil:
		return missing("time_end")
	case raw.Weekday == nil:
		return missing("weekday_int")
	case raw.DateStart == nil:
		return missing("date_start")
	case raw.DateEnd == nil:
		return missing("date_end")
	case raw.RepeatDays == nil:
		return missing("repeat_timedelta_days")
	case raw.Location == nil:
		return missing("location")
	}

	var p MeetingParams
	var err error
	if p.TimeStart, err = civil.ParseTime(*raw.TimeStart); err != nil {
		return &ValidationError{Field: "time_start", Value: *raw.TimeStart, Reason: err.Error()}
	}
	if p.TimeEnd, err = civil.ParseTime(*raw.TimeEnd); err != nil {
		return &ValidationError{Field: "time_end", Value: *raw.TimeEnd, Reason: err.Error()}
	}
	if p.DateStart, err = civil.ParseDate(*raw.DateStart); err != nil {
		return &ValidationError{Field: "date_start", Value: *raw.DateStart, Reason: err.Error()}
	}
	if p.DateEnd, err = civil.ParseDate(*raw.DateEnd); err != nil {
		return &ValidationError{Field: "date_end", Value: *raw.DateEnd, Reason: err.Error()}
	}
	p.Weekday = *raw.Weekday
	p.RepeatDays = *raw.RepeatDays
	p.Location = *raw.Location

	meeting, err := NewMeeting(p)
	if err != nil {
		return err
	}
	*m = meeting
	return nil
}

// EncodeClassTime serializes a course's meetings to the compact text form
// stored alongside course records.
func EncodeClassTime(meetings []Meeting) (string, error) {
	if meetings == nil {
		meetings = []Meeting{}
	}
	b, err := json.Marshal(meetings)
	if err != nil {
		return "", fmt.Errorf("encode class time: %w", err)
	}
	return string(b), nil
}

// DecodeClassTime is the inverse of EncodeClassTime.
func DecodeClassTime(s string) ([]Meeting, error) {
	var meetings []Meeting
	if err := json.Unmarshal([]byte(s), &meetings); err != nil {
		return nil, fmt.Errorf("decode class time: %w", err)
	}
	if meetings == nil {
		meetings = []Meeting{}
	}
	return meetings, nil
}
