package schedule

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/rcliao/schedulizer/internal/model"
)

// Conflicts reports whether two meetings overlap: same weekday, overlapping
// resolved date ranges, and overlapping half-open time ranges. Meetings that
// share only a boundary instant do not conflict. Async meetings never
// conflict.
func Conflicts(a, b model.Meeting) bool {
	if a.IsAsync() || b.IsAsync() || a.Weekday != b.Weekday {
		return false
	}
	return datesOverlap(ActualStart(a), ActualEnd(a), ActualStart(b), ActualEnd(b)) &&
		timesOverlap(a, b)
}

// datesOverlap tests inclusive ranges by boundary containment in both
// directions. An inverted range holds no occurrence and overlaps nothing.
func datesOverlap(s1, e1, s2, e2 civil.Date) bool {
	if e1.Before(s1) || e2.Before(s2) {
		return false
	}
	within := func(d, s, e civil.Date) bool { return !d.Before(s) && !d.After(e) }
	return within(s1, s2, e2) || within(e1, s2, e2) ||
		within(s2, s1, e1) || within(e2, s1, e1)
}

func timesOverlap(a, b model.Meeting) bool {
	return model.ClockOffset(a.TimeStart) < model.ClockOffset(b.TimeEnd) &&
		model.ClockOffset(b.TimeStart) < model.ClockOffset(a.TimeEnd)
}

// Mode selects how a Detector scans each weekday bucket.
type Mode string

const (
	// ModeSweep compares each meeting against every later meeting that
	// starts before it ends. Nested intervals are found.
	ModeSweep Mode = "sweep"

	// ModeAdjacent compares only neighbours in (start, end) order. It can
	// miss a meeting that overlaps an earlier, longer meeting when a shorter
	// one sits between them.
	ModeAdjacent Mode = "adjacent"
)

// ParseMode validates a mode name. The empty string selects ModeSweep.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case "", ModeSweep:
		return ModeSweep, true
	case ModeAdjacent:
		return ModeAdjacent, true
	}
	return "", false
}

// MeetingRef locates a meeting within the selected courses.
type MeetingRef struct {
	CRN     int           `json:"crn"`
	Code    string        `json:"code"`
	Index   int           `json:"index"`
	Meeting model.Meeting `json:"meeting"`
}

// Conflict is a pair of overlapping meetings.
type Conflict struct {
	Weekday int        `json:"weekday"`
	A       MeetingRef `json:"a"`
	B       MeetingRef `json:"b"`
}

// Detector finds conflicts across the meetings of several courses.
type Detector struct {
	Mode Mode
}

// HasConflict reports whether any two meetings of courses overlap.
func (d Detector) HasConflict(courses []model.Course) bool {
	found := false
	d.scan(courses, func(Conflict) bool {
		found = true
		return false
	})
	return found
}

// FindConflicts returns every overlapping pair the detector's mode can see,
// ordered by weekday and start time.
func (d Detector) FindConflicts(courses []model.Course) []Conflict {
	var out []Conflict
	d.scan(courses, func(c Conflict) bool {
		out = append(out, c)
		return true
	})
	return out
}

// HasConflict runs a sweep detector over courses.
func HasConflict(courses []model.Course) bool {
	return Detector{Mode: ModeSweep}.HasConflict(courses)
}

// scan buckets meetings by weekday, sorts each bucket by (start, end) and
// hands every conflicting pair to yield until it returns false.
func (d Detector) scan(courses []model.Course, yield func(Conflict) bool) {
	var buckets [7][]MeetingRef
	for _, c := range courses {
		for i, m := range c.ClassTime {
			if m.IsAsync() {
				continue
			}
			buckets[m.Weekday] = append(buckets[m.Weekday], MeetingRef{
				CRN: c.CRN, Code: c.Code(), Index: i, Meeting: m,
			})
		}
	}

	for day, bucket := range buckets {
		slices.SortStableFunc(bucket, func(a, b MeetingRef) int {
			return cmp.Or(
				cmp.Compare(model.ClockOffset(a.Meeting.TimeStart), model.ClockOffset(b.Meeting.TimeStart)),
				cmp.Compare(model.ClockOffset(a.Meeting.TimeEnd), model.ClockOffset(b.Meeting.TimeEnd)),
			)
		})

		for i := 0; i < len(bucket)-1; i++ {
			for j := i + 1; j < len(bucket); j++ {
				if d.Mode == ModeAdjacent && j > i+1 {
					break
				}
				// later meetings start no earlier than bucket[j]
				if model.ClockOffset(bucket[j].Meeting.TimeStart) >= model.ClockOffset(bucket[i].Meeting.TimeEnd) {
					break
				}
				if Conflicts(bucket[i].Meeting, bucket[j].Meeting) {
					if !yield(Conflict{Weekday: day, A: bucket[i], B: bucket[j]}) {
						return
					}
				}
			}
		}
	}
}
