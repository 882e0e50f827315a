package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SaveScheduleParams holds parameters for saving a named schedule.
type SaveScheduleParams struct {
	Term string
	Name string
	CRNs []int
}

// Schedule is a named selection of sections within a term.
type Schedule struct {
	ID        string `json:"id"`
	Term      string `json:"term"`
	Name      string `json:"name"`
	CRNs      []int  `json:"crns"`
	CreatedAt string `json:"created_at"`
}

// SaveSchedule creates or replaces a named schedule. Every CRN must exist
// in the term.
func (s *SQLiteStore) SaveSchedule(ctx context.Context, p SaveScheduleParams) (*Schedule, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, errors.New("schedule name is required")
	}

	seen := map[int]bool{}
	crns := make([]int, 0, len(p.CRNs))
	for _, crn := range p.CRNs {
		if seen[crn] {
			continue
		}
		seen[crn] = true
		if err := s.resolveCourse(ctx, p.Term, crn); err != nil {
			return nil, err
		}
		crns = append(crns, crn)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE term = ? AND name = ?`, p.Term, name); err != nil {
		return nil, fmt.Errorf("replace schedule: %w", err)
	}

	sc := &Schedule{
		ID:        s.newID(),
		Term:      p.Term,
		Name:      name,
		CRNs:      crns,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO schedules (id, term, name, created_at) VALUES (?, ?, ?, ?)`,
		sc.ID, sc.Term, sc.Name, sc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}
	for i, crn := range crns {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schedule_courses (schedule_id, seq, crn) VALUES (?, ?, ?)`, sc.ID, i, crn)
		if err != nil {
			return nil, fmt.Errorf("insert schedule course: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sc, nil
}

// GetSchedule returns a saved schedule by name.
func (s *SQLiteStore) GetSchedule(ctx context.Context, term, name string) (*Schedule, error) {
	var sc Schedule
	err := s.db.QueryRowContext(ctx,
		`SELECT id, term, name, created_at FROM schedules WHERE term = ? AND name = ?`,
		term, name).Scan(&sc.ID, &sc.Term, &sc.Name, &sc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %w: %s/%s", ErrNotFound, term, name)
	}
	if err != nil {
		return nil, err
	}
	if sc.CRNs, err = s.scheduleCRNs(ctx, sc.ID); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListSchedules returns saved schedules, optionally filtered by term.
func (s *SQLiteStore) ListSchedules(ctx context.Context, term string) ([]Schedule, error) {
	query := `SELECT id, term, name, created_at FROM schedules`
	var args []interface{}
	if term != "" {
		query += ` WHERE term = ?`
		args = append(args, term)
	}
	query += ` ORDER BY term, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []Schedule{}
	for rows.Next() {
		var sc Schedule
		if err := rows.Scan(&sc.ID, &sc.Term, &sc.Name, &sc.CreatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range schedules {
		if schedules[i].CRNs, err = s.scheduleCRNs(ctx, schedules[i].ID); err != nil {
			return nil, err
		}
	}
	return schedules, nil
}

// RmSchedule deletes a saved schedule.
func (s *SQLiteStore) RmSchedule(ctx context.Context, term, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE term = ? AND name = ?`, term, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule %w: %s/%s", ErrNotFound, term, name)
	}
	return nil
}

func (s *SQLiteStore) scheduleCRNs(ctx context.Context, id string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT crn FROM schedule_courses WHERE schedule_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crns := []int{}
	for rows.Next() {
		var crn int
		if err := rows.Scan(&crn); err != nil {
			return nil, err
		}
		crns = append(crns, crn)
	}
	return crns, rows.Err()
}

// resolveCourse checks that a section exists.
func (s *SQLiteStore) resolveCourse(ctx context.Context, term string, crn int) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM courses WHERE term = ? AND crn = ?`, term, crn).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(term, crn)
	}
	return err
}
