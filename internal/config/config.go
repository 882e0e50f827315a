// Package config loads semester and scoring criteria files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/scorer"
)

// SemesterFile is the on-disk form of a semester configuration.
type SemesterFile struct {
	Name     string      `yaml:"name"`
	Term     string      `yaml:"term"`
	Start    string      `yaml:"start"`
	End      string      `yaml:"end"`
	Timezone string      `yaml:"timezone"`
	Events   []EventFile `yaml:"events"`
}

// EventFile is a universal event entry.
type EventFile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
}

// CriteriaFile is the on-disk form of scorer.Criteria.
type CriteriaFile struct {
	StartAfter    *DayTimesFile  `yaml:"start_after"`
	EndBefore     *DayTimesFile  `yaml:"end_before"`
	Virtual       *VirtualFile   `yaml:"virtual"`
	MinSeatsOpen  *ThresholdFile `yaml:"min_seats_open"`
	MaxCapacity   *ThresholdFile `yaml:"max_capacity"`
	MinProfRating *RatingFile    `yaml:"min_prof_rating"`
}

// DayTimesFile maps weekday names to "HH:MM" times.
type DayTimesFile struct {
	Weight float64           `yaml:"weight"`
	Times  map[string]string `yaml:"times"`
}

type VirtualFile struct {
	Prefer bool    `yaml:"prefer"`
	Weight float64 `yaml:"weight"`
}

type ThresholdFile struct {
	Value  int     `yaml:"value"`
	Weight float64 `yaml:"weight"`
}

type RatingFile struct {
	Value  float64 `yaml:"value"`
	Weight float64 `yaml:"weight"`
}

var timeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"}

// LoadSemester reads a semester file.
func LoadSemester(path string) (*model.Semester, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read semester config: %w", err)
	}
	sem, err := ParseSemester(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sem, nil
}

// ParseSemester decodes a semester document. Times without an offset are
// read in the configured timezone, or UTC when none is set.
func ParseSemester(r io.Reader) (*model.Semester, error) {
	var f SemesterFile
	if err := decodeStrict(r, &f); err != nil {
		return nil, fmt.Errorf("parse semester config: %w", err)
	}

	loc := time.UTC
	if f.Timezone != "" {
		l, err := time.LoadLocation(f.Timezone)
		if err != nil {
			return nil, fmt.Errorf("timezone: %w", err)
		}
		loc = l
	}

	start, err := parseTime(f.Start, loc)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := parseTime(f.End, loc)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("semester ends (%s) before it starts (%s)", f.End, f.Start)
	}

	sem := &model.Semester{
		Name:            f.Name,
		TermID:          f.Term,
		Start:           start,
		End:             end,
		Timezone:        f.Timezone,
		UniversalEvents: make([]model.UniversalEvent, 0, len(f.Events)),
	}
	for i, ev := range f.Events {
		s, err := parseTime(ev.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("event %d start: %w", i, err)
		}
		e, err := parseTime(ev.End, loc)
		if err != nil {
			return nil, fmt.Errorf("event %d end: %w", i, err)
		}
		if e.Before(s) {
			return nil, fmt.Errorf("event %q ends before it starts", ev.Name)
		}
		sem.UniversalEvents = append(sem.UniversalEvents, model.UniversalEvent{
			Name: ev.Name, Description: ev.Description, Start: s, End: e,
		})
	}
	return sem, nil
}

// LoadCriteria reads a scoring criteria file. JSON documents are accepted
// as well.
func LoadCriteria(path string) (*scorer.Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria: %w", err)
	}
	c, err := ParseCriteria(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCriteria decodes a criteria document. Omitted blocks stay nil.
func ParseCriteria(r io.Reader) (*scorer.Criteria, error) {
	var f CriteriaFile
	if err := decodeStrict(r, &f); err != nil {
		return nil, fmt.Errorf("parse criteria: %w", err)
	}

	var c scorer.Criteria
	var err error
	if c.StartAfter, err = f.StartAfter.dayTimes(); err != nil {
		return nil, fmt.Errorf("start_after: %w", err)
	}
	if c.EndBefore, err = f.EndBefore.dayTimes(); err != nil {
		return nil, fmt.Errorf("end_before: %w", err)
	}
	if f.Virtual != nil {
		c.Virtual = &scorer.VirtualPref{Prefer: f.Virtual.Prefer, Weight: f.Virtual.Weight}
	}
	if f.MinSeatsOpen != nil {
		c.MinSeatsOpen = &scorer.Threshold{Value: f.MinSeatsOpen.Value, Weight: f.MinSeatsOpen.Weight}
	}
	if f.MaxCapacity != nil {
		c.MaxCapacity = &scorer.Threshold{Value: f.MaxCapacity.Value, Weight: f.MaxCapacity.Weight}
	}
	if f.MinProfRating != nil {
		c.MinProfRating = &scorer.RatingThreshold{Value: f.MinProfRating.Value, Weight: f.MinProfRating.Weight}
	}
	return &c, nil
}

func (f *DayTimesFile) dayTimes() (*scorer.DayTimes, error) {
	if f == nil {
		return nil, nil
	}
	d := &scorer.DayTimes{Weight: f.Weight}
	for name, value := range f.Times {
		day, err := model.ParseDay(name)
		if err != nil {
			return nil, err
		}
		if day == model.Async {
			return nil, fmt.Errorf("day %q: async meetings have no time of day", name)
		}
		t, err := model.ParseClock(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		d.Times[day] = &t
	}
	return d, nil
}

func decodeStrict(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing time")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
