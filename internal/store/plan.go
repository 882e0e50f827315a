package store

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/schedule"
	"github.com/rcliao/schedulizer/internal/scorer"
)

// PlanParams holds parameters for building a schedule.
type PlanParams struct {
	Term     string
	Codes    []string // course codes, e.g. "MATH1020U", placed in order
	Criteria scorer.Criteria
	Mode     schedule.Mode
}

// PlanResult is the assembled schedule.
type PlanResult struct {
	Term     string          `json:"term"`
	Score    float64         `json:"score"`
	Sections []scorer.Result `json:"sections"`
	Unplaced []string        `json:"unplaced"`
	Courses  []model.Course  `json:"-"`
}

// Plan picks one section per course code. Each code's sections are ranked
// by the criteria and the best one that does not conflict with the sections
// already chosen is kept. Codes with no stored sections, or whose every
// section conflicts, are reported as unplaced.
func (s *SQLiteStore) Plan(ctx context.Context, p PlanParams) (*PlanResult, error) {
	det := schedule.Detector{Mode: p.Mode}
	result := &PlanResult{Term: p.Term, Sections: []scorer.Result{}, Unplaced: []string{}}

	for _, code := range p.Codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		sections, err := s.List(ctx, ListParams{Term: p.Term, Code: code, Limit: math.MaxInt32})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", code, err)
		}

		byCRN := make(map[int]model.Course, len(sections))
		for _, c := range sections {
			byCRN[c.CRN] = c
		}

		placed := false
		for _, r := range scorer.Rank(p.Criteria, sections) {
			candidate := byCRN[r.CRN]
			if det.HasConflict(append(result.Courses[:len(result.Courses):len(result.Courses)], candidate)) {
				continue
			}
			result.Courses = append(result.Courses, candidate)
			result.Sections = append(result.Sections, r)
			result.Score += r.Score
			placed = true
			break
		}
		if !placed {
			result.Unplaced = append(result.Unplaced, code)
		}
	}

	result.Score = math.Round(result.Score*1000) / 1000
	return result, nil
}
