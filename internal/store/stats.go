package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string      `json:"db_path"`
	DBSizeBytes   int64       `json:"db_size_bytes"`
	TotalSections int         `json:"total_sections"`
	TotalCourses  int         `json:"total_courses"`
	Schedules     int         `json:"schedules"`
	Terms         []TermStats `json:"terms"`
}

// TermStats holds per-term counts.
type TermStats struct {
	Term      string `json:"term"`
	Sections  int    `json:"sections"`
	Courses   int    `json:"courses"`
	Virtual   int    `json:"virtual"`
	SeatsOpen int    `json:"seats_open"`
	Refreshed string `json:"last_refreshed"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Terms: []TermStats{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&st.TotalSections)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT term || '/' || fac || uid) FROM courses`).Scan(&st.TotalCourses)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedules`).Scan(&st.Schedules)

	rows, err := s.db.QueryContext(ctx, `
		SELECT term, COUNT(*), COUNT(DISTINCT fac || uid), SUM(is_virtual),
		       SUM(MAX(max_capacity - seats_filled, 0)), MAX(updated_at)
		FROM courses
		GROUP BY term ORDER BY term`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var t TermStats
		if err := rows.Scan(&t.Term, &t.Sections, &t.Courses, &t.Virtual, &t.SeatsOpen, &t.Refreshed); err != nil {
			return st, err
		}
		st.Terms = append(st.Terms, t)
	}

	return st, rows.Err()
}
