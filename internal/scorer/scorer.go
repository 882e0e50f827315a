// Package scorer rates course sections against a student's preferences.
package scorer

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/schedule"
)

// Criteria holds the optional scoring criteria. A nil block contributes
// nothing; a non-nil block with zero weight is specified but inert.
type Criteria struct {
	StartAfter    *DayTimes        `json:"start_after,omitempty"`
	EndBefore     *DayTimes        `json:"end_before,omitempty"`
	Virtual       *VirtualPref     `json:"virtual,omitempty"`
	MinSeatsOpen  *Threshold       `json:"min_seats_open,omitempty"`
	MaxCapacity   *Threshold       `json:"max_capacity,omitempty"`
	MinProfRating *RatingThreshold `json:"min_prof_rating,omitempty"`
}

// DayTimes is a per-weekday time preference indexed Monday = 0. A nil entry
// leaves meetings on that day unscored.
type DayTimes struct {
	Times  [7]*civil.Time `json:"times"`
	Weight float64        `json:"weight"`
}

// VirtualPref prefers virtual (true) or in-person (false) sections.
type VirtualPref struct {
	Prefer bool    `json:"prefer"`
	Weight float64 `json:"weight"`
}

// Threshold is an integer limit with its weight.
type Threshold struct {
	Value  int     `json:"value"`
	Weight float64 `json:"weight"`
}

// RatingThreshold is reserved for professor ratings and is not scored yet.
type RatingThreshold struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Part names used in Result.Parts.
const (
	PartStartAfter   = "start_after"
	PartEndBefore    = "end_before"
	PartVirtual      = "virtual"
	PartMinSeatsOpen = "min_seats_open"
	PartMaxCapacity  = "max_capacity"
)

var partOrder = []string{PartStartAfter, PartEndBefore, PartVirtual, PartMinSeatsOpen, PartMaxCapacity}

// Result is a scored course.
type Result struct {
	CRN   int                `json:"crn"`
	Code  string             `json:"code"`
	Title string             `json:"title"`
	Score float64            `json:"score"`
	Parts map[string]float64 `json:"parts,omitempty"`
}

// Score returns the weighted desirability of course. Higher is better.
func Score(c Criteria, course model.Course) float64 {
	return Breakdown(c, course).Score
}

// Breakdown scores course and records each active criterion's contribution.
//
// Time and virtual criteria are scaled by occurrence count so that a weekly
// section outweighs a biweekly one that matches equally well.
func Breakdown(c Criteria, course model.Course) Result {
	r := Result{CRN: course.CRN, Code: course.Code(), Title: course.Title, Parts: map[string]float64{}}

	if c.StartAfter != nil {
		part := 0.0
		for _, m := range course.ClassTime {
			pref := c.StartAfter.forDay(m.Weekday)
			if pref == nil {
				continue
			}
			part += signed(model.ClockOffset(m.TimeStart) > model.ClockOffset(*pref),
				float64(schedule.OccurrenceCount(m))*c.StartAfter.Weight)
		}
		r.Parts[PartStartAfter] = part
	}

	if c.EndBefore != nil {
		part := 0.0
		for _, m := range course.ClassTime {
			pref := c.EndBefore.forDay(m.Weekday)
			if pref == nil {
				continue
			}
			part += signed(model.ClockOffset(m.TimeEnd) < model.ClockOffset(*pref),
				float64(schedule.OccurrenceCount(m))*c.EndBefore.Weight)
		}
		r.Parts[PartEndBefore] = part
	}

	if c.Virtual != nil {
		r.Parts[PartVirtual] = signed(c.Virtual.Prefer == course.IsVirtual,
			float64(schedule.CourseOccurrences(course))*c.Virtual.Weight)
	}

	if c.MinSeatsOpen != nil {
		r.Parts[PartMinSeatsOpen] = signed(c.MinSeatsOpen.Value <= course.SeatsOpen(), c.MinSeatsOpen.Weight)
	}

	if c.MaxCapacity != nil {
		r.Parts[PartMaxCapacity] = signed(c.MaxCapacity.Value >= course.MaxCapacity, c.MaxCapacity.Weight)
	}

	// TODO: score MinProfRating once instructor ratings are fetched into the course store.

	for _, name := range partOrder {
		r.Score += r.Parts[name]
	}
	return r
}

// Rank scores every course and sorts by score, best first. Ties keep CRN
// order.
func Rank(c Criteria, courses []model.Course) []Result {
	results := make([]Result, 0, len(courses))
	for _, course := range courses {
		results = append(results, Breakdown(c, course))
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.CRN, b.CRN))
	})
	return results
}

func (d *DayTimes) forDay(weekday int) *civil.Time {
	if weekday < model.Monday || weekday > model.Sunday {
		return nil
	}
	return d.Times[weekday]
}

func signed(favourable bool, amount float64) float64 {
	if favourable {
		return amount
	}
	return -amount
}
