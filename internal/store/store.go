// Package store provides the course storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/schedulizer/internal/model"
)

// ErrNotFound is returned when a course or saved schedule does not exist.
var ErrNotFound = errors.New("not found")

// ListParams holds parameters for listing courses.
type ListParams struct {
	Term  string
	Fac   string
	UID   string
	Code  string // fac+uid, e.g. "MATH1020U"
	Limit int
}

// Store defines the course storage interface.
type Store interface {
	// Put inserts or replaces a course keyed by term and CRN.
	Put(ctx context.Context, c model.Course) (*model.Course, error)

	// Get retrieves one section.
	Get(ctx context.Context, term string, crn int) (*model.Course, error)

	// GetMany retrieves sections in the order given.
	GetMany(ctx context.Context, term string, crns []int) ([]model.Course, error)

	// List lists courses matching the given filters.
	List(ctx context.Context, p ListParams) ([]model.Course, error)

	// Rm deletes a section.
	Rm(ctx context.Context, term string, crn int) error

	// IsFresh reports whether every section of a course was refreshed
	// within maxAge.
	IsFresh(ctx context.Context, term, fac, uid string, maxAge time.Duration) (bool, error)

	// Close closes the store.
	Close() error
}
