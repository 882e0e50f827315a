package store

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/scorer"
)

func TestPlanPicksBestNonConflicting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// MATH1020U: morning section preferred by the criteria.
	s.Put(ctx, course(1, "MATH", "1020U", meeting(t, model.Monday, "08:10", "09:30")))
	s.Put(ctx, course(2, "MATH", "1020U", meeting(t, model.Monday, "11:10", "12:30")))
	// CSCI2000U: the late section clashes with MATH section 2, the
	// early one with section 1.
	s.Put(ctx, course(3, "CSCI", "2000U", meeting(t, model.Monday, "11:40", "13:00")))
	s.Put(ctx, course(4, "CSCI", "2000U", meeting(t, model.Monday, "08:40", "10:00")))

	ten := civil.Time{Hour: 10}
	criteria := scorer.Criteria{
		StartAfter: &scorer.DayTimes{Weight: 1, Times: [7]*civil.Time{model.Monday: &ten}},
	}

	res, err := s.Plan(ctx, PlanParams{Term: "202201", Codes: []string{"math1020u", "CSCI2000U"}, Criteria: criteria})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %+v", res)
	}
	if res.Sections[0].CRN != 2 {
		t.Errorf("expected later MATH section 2, got %d", res.Sections[0].CRN)
	}
	if res.Sections[1].CRN != 4 {
		t.Errorf("expected CSCI section 4 to avoid the clash, got %d", res.Sections[1].CRN)
	}
	if len(res.Unplaced) != 0 {
		t.Errorf("expected nothing unplaced, got %v", res.Unplaced)
	}
	if len(res.Courses) != 2 {
		t.Errorf("expected chosen courses returned, got %d", len(res.Courses))
	}
}

func TestPlanUnplaced(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, course(1, "MATH", "1020U", meeting(t, model.Tuesday, "09:00", "10:00")))
	s.Put(ctx, course(2, "CSCI", "2000U", meeting(t, model.Tuesday, "09:30", "10:30")))

	res, err := s.Plan(ctx, PlanParams{Term: "202201", Codes: []string{"MATH1020U", "CSCI2000U", "PHYS1010U", " "}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(res.Sections) != 1 || res.Sections[0].CRN != 1 {
		t.Errorf("expected only MATH placed, got %+v", res.Sections)
	}
	want := []string{"CSCI2000U", "PHYS1010U"}
	if len(res.Unplaced) != len(want) {
		t.Fatalf("expected unplaced %v, got %v", want, res.Unplaced)
	}
	for i := range want {
		if res.Unplaced[i] != want[i] {
			t.Errorf("unplaced[%d] = %s, want %s", i, res.Unplaced[i], want[i])
		}
	}
}
