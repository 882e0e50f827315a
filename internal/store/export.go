package store

import (
	"context"
	"strings"

	"github.com/rcliao/schedulizer/internal/model"
)

// Dump is a portable copy of the store.
type Dump struct {
	Courses   []model.Course `json:"courses"`
	Schedules []Schedule     `json:"schedules"`
}

// ExportAll returns every course and saved schedule, optionally filtered by term.
func (s *SQLiteStore) ExportAll(ctx context.Context, term string) (*Dump, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if term != "" {
		where = append(where, "term = ?")
		args = append(args, term)
	}

	query := `SELECT ` + courseColumns + ` FROM courses WHERE ` + strings.Join(where, " AND ") + ` ORDER BY term, crn`
	courses, err := s.queryCourses(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	schedules, err := s.ListSchedules(ctx, term)
	if err != nil {
		return nil, err
	}

	return &Dump{Courses: courses, Schedules: schedules}, nil
}

// Import stores courses and schedules from an export. Existing sections
// and schedules with the same key are replaced.
func (s *SQLiteStore) Import(ctx context.Context, d Dump) (int, error) {
	imported := 0
	for _, c := range d.Courses {
		if _, err := s.Put(ctx, c); err != nil {
			return imported, err
		}
		imported++
	}
	for _, sc := range d.Schedules {
		_, err := s.SaveSchedule(ctx, SaveScheduleParams{Term: sc.Term, Name: sc.Name, CRNs: sc.CRNs})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
