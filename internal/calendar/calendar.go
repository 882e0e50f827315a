// Package calendar exports selected courses as an iCalendar document.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	ics "github.com/arran4/golang-ical"
	"github.com/oklog/ulid/v2"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/schedule"
)

const (
	// VirtualLocation replaces the meeting location of fully virtual courses.
	VirtualLocation = "SYNCHRONOUS/VIRTUAL"

	// DefaultProductID is the PRODID of generated calendars.
	DefaultProductID = "-//schedulizer//course calendar//EN"

	floatingFormat = "20060102T150405"
)

var endOfDay = civil.Time{Hour: 23, Minute: 59, Second: 59}

// protocolDay maps Monday = 0 weekdays onto the Sunday = 0 numbering used by
// calendar clients; dayTokens is indexed by the latter.
var (
	protocolDay = [7]int{1, 2, 3, 4, 5, 6, 0}
	dayTokens   = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}
)

// Event is one calendar entry before encoding.
type Event struct {
	UID         string    `json:"uid"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	RRule       string    `json:"rrule,omitempty"`
}

// Exporter turns courses and a semester into calendar events.
type Exporter struct {
	ProductID string
	Now       func() time.Time
	Entropy   io.Reader

	mu sync.Mutex // guards Entropy
}

// NewExporter returns an exporter using the wall clock for DTSTAMP and UIDs.
// An Exporter is safe for concurrent use.
func NewExporter() *Exporter {
	return &Exporter{
		ProductID: DefaultProductID,
		Now:       time.Now,
		Entropy:   ulid.DefaultEntropy(),
	}
}

// Events builds one event per exportable (course, meeting) pair followed by
// one event per universal event of sem.
func (e *Exporter) Events(sem model.Semester, courses []model.Course) []Event {
	var events []Event
	for _, c := range courses {
		for _, m := range c.ClassTime {
			ev, ok := e.meetingEvent(sem, c, m)
			if ok {
				events = append(events, ev)
			}
		}
	}
	for _, u := range sem.UniversalEvents {
		events = append(events, Event{
			UID:         e.newUID(),
			Summary:     u.Name,
			Description: u.Description,
			Start:       u.Start,
			End:         u.End,
		})
	}
	return events
}

func (e *Exporter) meetingEvent(sem model.Semester, c model.Course, m model.Meeting) (Event, bool) {
	loc := sem.Location()
	ev := Event{
		Summary:     Summary(c),
		Description: Description(c),
		Location:    m.Location,
	}
	if c.IsVirtual {
		ev.Location = VirtualLocation
	}

	switch {
	case m.RepeatDays == 0:
		ev.Start = model.At(m.DateStart, m.TimeStart, loc)
		ev.End = model.At(m.DateStart, m.TimeEnd, loc)
		if !sem.Contains(ev.Start, ev.End) {
			return Event{}, false
		}
	case m.RepeatDays%7 == 0 && !m.IsAsync():
		first := schedule.ActualStart(m)
		ev.Start = model.At(first, m.TimeStart, loc)
		ev.End = model.At(first, m.TimeEnd, loc)
		ev.RRule = RRule(m)
	default:
		// irregular recurrence is not exported
		return Event{}, false
	}

	ev.UID = e.newUID()
	return ev, true
}

// Summary renders "Title TYP (FACUID)", e.g. "Calculus II LEC (MATH1020U)".
func Summary(c model.Course) string {
	typ := []rune(c.ClassType)
	if len(typ) > 3 {
		typ = typ[:3]
	}
	return fmt.Sprintf("%s %s (%s)", c.Title, strings.ToUpper(string(typ)), c.Code())
}

// Description lists instructors, CRN and section on separate lines.
func Description(c model.Course) string {
	return fmt.Sprintf("Instructor: %s\nCRN: %d\nSection: %s\n", c.Instructors, c.CRN, c.Section)
}

// RRule encodes a weekly recurrence for m. m.RepeatDays must be a positive
// multiple of seven and m.Weekday a fixed day.
func RRule(m model.Meeting) string {
	until := model.At(m.DateEnd, endOfDay, time.UTC)
	return fmt.Sprintf("FREQ=WEEKLY;INTERVAL=%d;UNTIL=%s;BYDAY=%s",
		m.RepeatDays/7, until.Format(floatingFormat), dayTokens[protocolDay[m.Weekday]])
}

// Build encodes the events of sem and courses into a calendar.
func (e *Exporter) Build(sem model.Semester, courses []model.Course) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.productID())
	if sem.Name != "" {
		cal.SetXWRCalName(sem.Name)
	}
	if sem.Timezone != "" {
		cal.SetXWRTimezone(sem.Timezone)
	}

	stamp := e.now()
	for _, ev := range e.Events(sem, courses) {
		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(ev.Summary)
		vevent.SetDescription(ev.Description)
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		vevent.SetProperty(ics.ComponentPropertyDtStart, ev.Start.Format(floatingFormat))
		vevent.SetProperty(ics.ComponentPropertyDtEnd, ev.End.Format(floatingFormat))
		if ev.RRule != "" {
			vevent.SetProperty(ics.ComponentPropertyRrule, ev.RRule)
		}
	}
	return cal
}

// Write serializes the calendar of sem and courses to w.
func (e *Exporter) Write(w io.Writer, sem model.Semester, courses []model.Course) error {
	if err := e.Build(sem, courses).SerializeTo(w); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

func (e *Exporter) newUID() string {
	ms := ulid.Timestamp(e.now())

	e.mu.Lock()
	defer e.mu.Unlock()
	entropy := e.Entropy
	if entropy == nil {
		entropy = ulid.DefaultEntropy()
	}
	return ulid.MustNew(ms, entropy).String()
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Exporter) productID() string {
	if e.ProductID == "" {
		return DefaultProductID
	}
	return e.ProductID
}
