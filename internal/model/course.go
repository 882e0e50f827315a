package model

import (
	"fmt"
	"time"
)

// Course is one registrable section, identified by its CRN within a term.
type Course struct {
	Term        string    `json:"term"`
	Fac         string    `json:"fac"`
	UID         string    `json:"uid"`
	CRN         int       `json:"crn"`
	ClassType   string    `json:"class_type"`
	Title       string    `json:"title"`
	Section     string    `json:"section"`
	ClassTime   []Meeting `json:"class_time"`
	IsLinked    bool      `json:"is_linked"`
	LinkTag     string    `json:"link_tag,omitempty"`
	SeatsFilled int       `json:"seats_filled"`
	MaxCapacity int       `json:"max_capacity"`
	Instructors string    `json:"instructors,omitempty"`
	IsVirtual   bool      `json:"is_virtual"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Code returns the course code, e.g. "MATH1010U".
func (c Course) Code() string {
	return c.Fac + c.UID
}

// SeatsOpen returns the number of unfilled seats.
func (c Course) SeatsOpen() int {
	return c.MaxCapacity - c.SeatsFilled
}

// Validate checks the course key and every meeting.
func (c Course) Validate() error {
	if c.CRN <= 0 {
		return fmt.Errorf("course %s: crn must be positive, got %d", c.Code(), c.CRN)
	}
	for i, m := range c.ClassTime {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("course %d meeting %d: %w", c.CRN, i, err)
		}
	}
	return nil
}
