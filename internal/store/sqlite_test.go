package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/rcliao/schedulizer/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func meeting(t *testing.T, weekday int, start, end string) model.Meeting {
	t.Helper()
	ts, err := model.ParseClock(start)
	if err != nil {
		t.Fatalf("parse %s: %v", start, err)
	}
	te, err := model.ParseClock(end)
	if err != nil {
		t.Fatalf("parse %s: %v", end, err)
	}
	m, err := model.NewMeeting(model.MeetingParams{
		TimeStart:  ts,
		TimeEnd:    te,
		Weekday:    weekday,
		DateStart:  civil.Date{Year: 2022, Month: time.January, Day: 10},
		DateEnd:    civil.Date{Year: 2022, Month: time.April, Day: 14},
		RepeatDays: 7,
		Location:   "UA 1350",
	})
	if err != nil {
		t.Fatalf("meeting: %v", err)
	}
	return m
}

func course(crn int, fac, uid string, meetings ...model.Meeting) model.Course {
	return model.Course{
		Term: "202201", Fac: fac, UID: uid, CRN: crn,
		ClassType: "Lecture", Title: fac + " " + uid, Section: "001",
		ClassTime: meetings, SeatsFilled: 10, MaxCapacity: 40,
	}
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := course(74211, "MATH", "1020U", meeting(t, model.Monday, "09:40", "11:00"), meeting(t, model.Wednesday, "09:40", "11:00"))
	c.Title = "Calculus II"
	c.Instructors = "Ada Lovelace (ada@example.edu)"
	c.IsLinked = true
	c.LinkTag = "A1"
	c.IsVirtual = true

	stored, err := s.Put(ctx, c)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if stored.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}

	got, err := s.Get(ctx, "202201", 74211)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Calculus II" || got.Code() != "MATH1020U" {
		t.Errorf("unexpected course %+v", got)
	}
	if !got.IsLinked || got.LinkTag != "A1" || !got.IsVirtual {
		t.Errorf("flags not persisted: %+v", got)
	}
	if got.Instructors != c.Instructors {
		t.Errorf("expected instructors %q, got %q", c.Instructors, got.Instructors)
	}
	if len(got.ClassTime) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(got.ClassTime))
	}
	if got.ClassTime[1] != c.ClassTime[1] {
		t.Errorf("meeting changed on round trip: %+v != %+v", got.ClassTime[1], c.ClassTime[1])
	}
}

func TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := course(1, "MATH", "1020U")
	s.Put(ctx, c)
	c.SeatsFilled = 39
	if _, err := s.Put(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}

	list, _ := s.List(ctx, ListParams{Term: "202201"})
	if len(list) != 1 {
		t.Fatalf("expected 1 section after upsert, got %d", len(list))
	}
	if list[0].SeatsFilled != 39 {
		t.Errorf("expected seats_filled 39, got %d", list[0].SeatsFilled)
	}
	if list[0].ClassTime == nil {
		t.Error("expected empty class time, got nil")
	}
}

func TestPutRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	bad := course(1, "MATH", "1020U")
	bad.ClassTime = []model.Meeting{{Weekday: 9}}
	if _, err := s.Put(context.Background(), bad); !errors.Is(err, model.ErrInvalidMeeting) {
		t.Errorf("expected invalid meeting error, got %v", err)
	}
	if _, err := s.Put(context.Background(), course(0, "MATH", "1020U")); err == nil {
		t.Error("expected error for zero crn")
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "202201", 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "course not found: 202201/99" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestGetMany(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Put(ctx, course(1, "MATH", "1020U"))
	s.Put(ctx, course(2, "CSCI", "2000U"))

	got, err := s.GetMany(ctx, "202201", []int{2, 1})
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	if len(got) != 2 || got[0].CRN != 2 || got[1].CRN != 1 {
		t.Errorf("expected order preserved, got %+v", got)
	}

	if _, err := s.GetMany(ctx, "202201", []int{1, 3}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing crn, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, course(1, "MATH", "1020U"))
	s.Put(ctx, course(2, "MATH", "1020U"))
	s.Put(ctx, course(3, "MATH", "2050U"))
	other := course(4, "CSCI", "2000U")
	other.Term = "202209"
	s.Put(ctx, other)

	tests := []struct {
		name string
		p    ListParams
		want int
	}{
		{"all", ListParams{}, 4},
		{"term", ListParams{Term: "202201"}, 3},
		{"fac", ListParams{Fac: "math"}, 3},
		{"fac and uid", ListParams{Fac: "MATH", UID: "1020U"}, 2},
		{"code", ListParams{Code: "math1020u"}, 2},
		{"limit", ListParams{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.p)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d, got %d", tt.want, len(got))
			}
		})
	}
}

func TestRm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, course(1, "MATH", "1020U"))
	if err := s.Rm(ctx, "202201", 1); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := s.Get(ctx, "202201", 1); !errors.Is(err, ErrNotFound) {
		t.Error("expected not found after rm")
	}
	if err := s.Rm(ctx, "202201", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second rm, got %v", err)
	}
}

func TestIsFresh(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2022, 1, 5, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.Put(ctx, course(1, "MATH", "1020U"))
	s.now = func() time.Time { return base.Add(20 * time.Minute) }
	s.Put(ctx, course(2, "MATH", "1020U"))

	tests := []struct {
		name string
		at   time.Duration
		want bool
	}{
		{"just stored", 25 * time.Minute, true},
		{"oldest at limit", 30 * time.Minute, true},
		{"oldest stale", 31 * time.Minute, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.now = func() time.Time { return base.Add(tt.at) }
			fresh, err := s.IsFresh(ctx, "202201", "MATH", "1020U", 30*time.Minute)
			if err != nil {
				t.Fatalf("is fresh: %v", err)
			}
			if fresh != tt.want {
				t.Errorf("expected %v, got %v", tt.want, fresh)
			}
		})
	}

	fresh, err := s.IsFresh(ctx, "202201", "PHYS", "1010U", time.Hour)
	if err != nil || fresh {
		t.Errorf("unknown course should not be fresh, got %v %v", fresh, err)
	}
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"30m", 30 * time.Minute, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"24h", 24 * time.Hour, true},
		{"60s", time.Minute, true},
		{"1w", 0, false},
		{"m", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseTTL(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseTTL(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTTL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	calc := course(1, "MATH", "1020U")
	calc.Title = "Calculus II"
	calc.Instructors = "Ada Lovelace (ada@example.edu)"
	s.Put(ctx, calc)
	prog := course(2, "CSCI", "2000U")
	prog.Title = "Object Oriented Programming"
	prog.Instructors = "Grace Hopper (grace@example.edu)"
	s.Put(ctx, prog)

	tests := []struct {
		query string
		want  []int
	}{
		{"calculus", []int{1}},
		{"csci2000", []int{2}},
		{"hopper", []int{2}},
		{"example.edu", []int{2, 1}},
		{"ada calculus", []int{1}},
		{"ada programming", nil},
		{"100%", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(ctx, SearchParams{Term: "202201", Query: tt.query})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d results, got %d", len(tt.want), len(got))
			}
			for i, crn := range tt.want {
				if got[i].CRN != crn {
					t.Errorf("position %d: expected crn %d, got %d", i, crn, got[i].CRN)
				}
			}
		})
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, course(1, "MATH", "1020U"))
	v := course(2, "MATH", "1020U")
	v.IsVirtual = true
	s.Put(ctx, v)
	s.SaveSchedule(ctx, SaveScheduleParams{Term: "202201", Name: "a", CRNs: []int{1}})

	st, err := s.Stats(ctx, "/nonexistent.db")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalSections != 2 || st.TotalCourses != 1 || st.Schedules != 1 {
		t.Errorf("unexpected totals %+v", st)
	}
	if len(st.Terms) != 1 {
		t.Fatalf("expected 1 term, got %d", len(st.Terms))
	}
	if term := st.Terms[0]; term.Virtual != 1 || term.SeatsOpen != 60 {
		t.Errorf("unexpected term stats %+v", term)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
