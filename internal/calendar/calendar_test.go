package calendar

import (
	"bytes"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	ics "github.com/arran4/golang-ical"

	"github.com/rcliao/schedulizer/internal/model"
)

func testExporter() *Exporter {
	fixed := time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)
	return &Exporter{
		ProductID: "-//test//EN",
		Now:       func() time.Time { return fixed },
		Entropy:   rand.New(rand.NewSource(1)),
	}
}

func testSemester() model.Semester {
	return model.Semester{
		Name:   "Winter 2022",
		TermID: "202201",
		Start:  time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2022, 4, 30, 23, 59, 59, 0, time.UTC),
		UniversalEvents: []model.UniversalEvent{{
			Name:        "Reading Week",
			Description: "No class",
			Start:       time.Date(2022, 2, 21, 0, 0, 0, 0, time.UTC),
			End:         time.Date(2022, 2, 25, 23, 59, 59, 0, time.UTC),
		}},
	}
}

func mustMeeting(t *testing.T, weekday int, start, end, dateStart, dateEnd string, repeat int) model.Meeting {
	t.Helper()
	ts, _ := model.ParseClock(start)
	te, _ := model.ParseClock(end)
	ds, _ := civil.ParseDate(dateStart)
	de, _ := civil.ParseDate(dateEnd)
	m, err := model.NewMeeting(model.MeetingParams{
		TimeStart: ts, TimeEnd: te, Weekday: weekday,
		DateStart: ds, DateEnd: de, RepeatDays: repeat,
		Location: "North Oshawa UA 1350",
	})
	if err != nil {
		t.Fatalf("new meeting: %v", err)
	}
	return m
}

func testCourse(meetings ...model.Meeting) model.Course {
	return model.Course{
		Fac: "MATH", UID: "1020U", CRN: 74211, ClassType: "Lecture",
		Title: "Calculus II", Section: "001", Instructors: "Ada Lovelace (ada@example.edu)",
		MaxCapacity: 120, ClassTime: meetings,
	}
}

func TestEvents_WeeklyMonday(t *testing.T) {
	c := testCourse(mustMeeting(t, model.Monday, "09:40", "11:00", "2022-01-19", "2022-04-14", 7))
	sem := testSemester()
	sem.UniversalEvents = nil

	events := testExporter().Events(sem, []model.Course{c})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.RRule != "FREQ=WEEKLY;INTERVAL=1;UNTIL=20220414T235959;BYDAY=MO" {
		t.Errorf("unexpected rrule %q", ev.RRule)
	}
	wantStart := time.Date(2022, 1, 24, 9, 40, 0, 0, time.UTC)
	if !ev.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, ev.Start)
	}
	if !ev.End.Equal(time.Date(2022, 1, 24, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %v", ev.End)
	}
	if ev.Summary != "Calculus II LEC (MATH1020U)" {
		t.Errorf("unexpected summary %q", ev.Summary)
	}
	if ev.Description != "Instructor: Ada Lovelace (ada@example.edu)\nCRN: 74211\nSection: 001\n" {
		t.Errorf("unexpected description %q", ev.Description)
	}
	if ev.Location != "North Oshawa UA 1350" {
		t.Errorf("unexpected location %q", ev.Location)
	}
	if ev.UID == "" {
		t.Error("expected a uid")
	}
}

func TestRRule_DayTokensAndInterval(t *testing.T) {
	tokens := []string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}
	for day, token := range tokens {
		m := mustMeeting(t, day, "09:00", "10:00", "2022-01-10", "2022-04-14", 14)
		want := "FREQ=WEEKLY;INTERVAL=2;UNTIL=20220414T235959;BYDAY=" + token
		if got := RRule(m); got != want {
			t.Errorf("day %d: got %q, want %q", day, got, want)
		}
	}
}

func TestEvents_SingleOccurrenceWindow(t *testing.T) {
	sem := testSemester()
	sem.UniversalEvents = nil
	inside := mustMeeting(t, model.Wednesday, "18:00", "20:00", "2022-03-02", "2022-03-02", 0)
	before := mustMeeting(t, model.Wednesday, "18:00", "20:00", "2022-01-05", "2022-01-05", 0)
	after := mustMeeting(t, model.Saturday, "18:00", "20:00", "2022-05-07", "2022-05-07", 0)

	events := testExporter().Events(sem, []model.Course{testCourse(inside, before, after)})
	if len(events) != 1 {
		t.Fatalf("expected only the in-window event, got %d", len(events))
	}
	if events[0].RRule != "" {
		t.Errorf("single event should not recur, got %q", events[0].RRule)
	}
	if !events[0].Start.Equal(time.Date(2022, 3, 2, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", events[0].Start)
	}
}

func TestEvents_SingleOnWindowBoundary(t *testing.T) {
	sem := testSemester()
	sem.UniversalEvents = nil
	sem.Start = time.Date(2022, 3, 2, 18, 0, 0, 0, time.UTC)
	sem.End = time.Date(2022, 3, 2, 20, 0, 0, 0, time.UTC)
	m := mustMeeting(t, model.Wednesday, "18:00", "20:00", "2022-03-02", "2022-03-02", 0)

	if n := len(testExporter().Events(sem, []model.Course{testCourse(m)})); n != 1 {
		t.Errorf("window bounds are inclusive, expected 1 event, got %d", n)
	}
}

func TestEvents_IrregularRecurrenceOmitted(t *testing.T) {
	sem := testSemester()
	sem.UniversalEvents = nil
	m := mustMeeting(t, model.Monday, "09:00", "10:00", "2022-01-10", "2022-04-14", 10)
	if n := len(testExporter().Events(sem, []model.Course{testCourse(m)})); n != 0 {
		t.Errorf("expected irregular recurrence to be skipped, got %d events", n)
	}
}

func TestEvents_VirtualLocation(t *testing.T) {
	sem := testSemester()
	sem.UniversalEvents = nil
	c := testCourse(mustMeeting(t, model.Tuesday, "09:00", "10:00", "2022-01-10", "2022-04-14", 7))
	c.IsVirtual = true
	events := testExporter().Events(sem, []model.Course{c})
	if len(events) != 1 || events[0].Location != VirtualLocation {
		t.Fatalf("expected virtual location, got %+v", events)
	}
}

func TestEvents_UniversalEventsCopied(t *testing.T) {
	sem := testSemester()
	events := testExporter().Events(sem, nil)
	if len(events) != 1 {
		t.Fatalf("expected 1 universal event, got %d", len(events))
	}
	u := sem.UniversalEvents[0]
	ev := events[0]
	if ev.Summary != u.Name || ev.Description != u.Description || !ev.Start.Equal(u.Start) || !ev.End.Equal(u.End) {
		t.Errorf("universal event not copied verbatim: %+v", ev)
	}
}

func TestSummary_ShortClassType(t *testing.T) {
	c := model.Course{Fac: "PHY", UID: "1010U", Title: "Physics I", ClassType: "Tu"}
	if got := Summary(c); got != "Physics I TU (PHY1010U)" {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestWrite_ParsesBack(t *testing.T) {
	c := testCourse(
		mustMeeting(t, model.Monday, "09:40", "11:00", "2022-01-19", "2022-04-14", 7),
		mustMeeting(t, model.Thursday, "12:40", "14:00", "2022-01-19", "2022-04-14", 14),
	)

	var buf bytes.Buffer
	if err := testExporter().Write(&buf, testSemester(), []model.Course{c}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "PRODID:-//test//EN") {
		t.Fatalf("unexpected calendar header:\n%s", out)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	events := cal.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	rules := map[string]bool{}
	for _, ev := range events {
		if p := ev.GetProperty(ics.ComponentPropertyRrule); p != nil {
			rules[p.Value] = true
		}
	}
	if !rules["FREQ=WEEKLY;INTERVAL=1;UNTIL=20220414T235959;BYDAY=MO"] {
		t.Errorf("missing monday rule, got %v", rules)
	}
	if !rules["FREQ=WEEKLY;INTERVAL=2;UNTIL=20220414T235959;BYDAY=TH"] {
		t.Errorf("missing thursday rule, got %v", rules)
	}

	start := events[0].GetProperty(ics.ComponentPropertyDtStart)
	if start == nil || start.Value != "20220124T094000" {
		t.Errorf("unexpected first DTSTART %+v", start)
	}
}

func TestEvents_UniqueUIDs(t *testing.T) {
	c := testCourse(
		mustMeeting(t, model.Monday, "09:40", "11:00", "2022-01-19", "2022-04-14", 7),
		mustMeeting(t, model.Wednesday, "09:40", "11:00", "2022-01-19", "2022-04-14", 7),
	)
	events := testExporter().Events(testSemester(), []model.Course{c})
	seen := map[string]bool{}
	for _, ev := range events {
		if seen[ev.UID] {
			t.Errorf("duplicate uid %s", ev.UID)
		}
		seen[ev.UID] = true
	}
}

func TestEvents_ConcurrentUse(t *testing.T) {
	e := NewExporter()
	c := testCourse(mustMeeting(t, model.Monday, "09:40", "11:00", "2022-01-19", "2022-04-14", 7))
	sem := testSemester()

	var wg sync.WaitGroup
	uids := make([][]string, 8)
	for g := range uids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				for _, ev := range e.Events(sem, []model.Course{c}) {
					uids[g] = append(uids[g], ev.UID)
				}
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, batch := range uids {
		for _, uid := range batch {
			if seen[uid] {
				t.Fatalf("duplicate uid %s across goroutines", uid)
			}
			seen[uid] = true
		}
	}
	if len(seen) != 8*50*2 {
		t.Errorf("expected %d events, got %d", 8*50*2, len(seen))
	}
}
