package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/schedulizer/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	now     func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		id           TEXT PRIMARY KEY,
		term         TEXT NOT NULL,
		crn          INTEGER NOT NULL,
		fac          TEXT NOT NULL,
		uid          TEXT NOT NULL,
		class_type   TEXT NOT NULL DEFAULT '',
		title        TEXT NOT NULL DEFAULT '',
		section      TEXT NOT NULL DEFAULT '',
		class_time   TEXT NOT NULL DEFAULT '[]',
		is_linked    INTEGER NOT NULL DEFAULT 0,
		link_tag     TEXT,
		seats_filled INTEGER NOT NULL DEFAULT 0,
		max_capacity INTEGER NOT NULL DEFAULT 0,
		instructors  TEXT,
		is_virtual   INTEGER NOT NULL DEFAULT 0,
		updated_at   TEXT NOT NULL,
		UNIQUE (term, crn)
	);
	CREATE INDEX IF NOT EXISTS idx_courses_code ON courses(term, fac, uid);
	CREATE INDEX IF NOT EXISTS idx_courses_updated ON courses(updated_at);

	CREATE TABLE IF NOT EXISTS schedules (
		id         TEXT PRIMARY KEY,
		term       TEXT NOT NULL,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (term, name)
	);

	CREATE TABLE IF NOT EXISTS schedule_courses (
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		crn         INTEGER NOT NULL,
		PRIMARY KEY (schedule_id, crn)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const courseColumns = `term, crn, fac, uid, class_type, title, section, class_time,
	is_linked, link_tag, seats_filled, max_capacity, instructors, is_virtual, updated_at`

// Put stores a course, replacing any section with the same term and CRN.
// The stored row keeps its original id.
func (s *SQLiteStore) Put(ctx context.Context, c model.Course) (*model.Course, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	classTime, err := model.EncodeClassTime(c.ClassTime)
	if err != nil {
		return nil, fmt.Errorf("encode class time: %w", err)
	}

	now := s.now().UTC().Truncate(time.Second)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO courses (id, `+courseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (term, crn) DO UPDATE SET
		   fac = excluded.fac, uid = excluded.uid, class_type = excluded.class_type,
		   title = excluded.title, section = excluded.section, class_time = excluded.class_time,
		   is_linked = excluded.is_linked, link_tag = excluded.link_tag,
		   seats_filled = excluded.seats_filled, max_capacity = excluded.max_capacity,
		   instructors = excluded.instructors, is_virtual = excluded.is_virtual,
		   updated_at = excluded.updated_at`,
		s.newID(), c.Term, c.CRN, c.Fac, c.UID, c.ClassType, c.Title, c.Section, classTime,
		c.IsLinked, nullable(c.LinkTag), c.SeatsFilled, c.MaxCapacity, nullable(c.Instructors),
		c.IsVirtual, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("upsert course: %w", err)
	}

	c.UpdatedAt = now
	if c.ClassTime == nil {
		c.ClassTime = []model.Meeting{}
	}
	return &c, nil
}

// Get retrieves one section by term and CRN.
func (s *SQLiteStore) Get(ctx context.Context, term string, crn int) (*model.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE term = ? AND crn = ?`, term, crn)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(term, crn)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetMany retrieves sections in the order given. The first missing CRN
// fails the whole call.
func (s *SQLiteStore) GetMany(ctx context.Context, term string, crns []int) ([]model.Course, error) {
	courses := make([]model.Course, 0, len(crns))
	for _, crn := range crns {
		c, err := s.Get(ctx, term, crn)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, nil
}

// List lists courses ordered by code then section.
func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Course, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}

	where := []string{"1 = 1"}
	var args []interface{}

	if p.Term != "" {
		where = append(where, "term = ?")
		args = append(args, p.Term)
	}
	if p.Fac != "" {
		where = append(where, "fac = ? COLLATE NOCASE")
		args = append(args, p.Fac)
	}
	if p.UID != "" {
		where = append(where, "uid = ? COLLATE NOCASE")
		args = append(args, p.UID)
	}
	if p.Code != "" {
		where = append(where, "(fac || uid) = ? COLLATE NOCASE")
		args = append(args, p.Code)
	}

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE %s
		ORDER BY term, fac, uid, section, crn LIMIT ?`, courseColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.queryCourses(ctx, query, args...)
}

// Rm deletes a section. Saved schedules that reference it keep the CRN.
func (s *SQLiteStore) Rm(ctx context.Context, term string, crn int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE term = ? AND crn = ?`, term, crn)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(term, crn)
	}
	return nil
}

// IsFresh reports whether the course has sections stored and the oldest
// of them was refreshed within maxAge.
func (s *SQLiteStore) IsFresh(ctx context.Context, term, fac, uid string, maxAge time.Duration) (bool, error) {
	var oldest sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(updated_at) FROM courses WHERE term = ? AND fac = ? COLLATE NOCASE AND uid = ? COLLATE NOCASE`,
		term, fac, uid).Scan(&oldest)
	if err != nil {
		return false, err
	}
	if !oldest.Valid {
		return false, nil
	}
	t, err := time.Parse(time.RFC3339, oldest.String)
	if err != nil {
		return false, fmt.Errorf("parse updated_at: %w", err)
	}
	return s.now().Sub(t) <= maxAge, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryCourses(ctx context.Context, query string, args ...interface{}) ([]model.Course, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(row scanner) (model.Course, error) {
	var c model.Course
	var classTime, updatedAt string
	var linkTag, instructors sql.NullString

	err := row.Scan(
		&c.Term, &c.CRN, &c.Fac, &c.UID, &c.ClassType, &c.Title, &c.Section, &classTime,
		&c.IsLinked, &linkTag, &c.SeatsFilled, &c.MaxCapacity, &instructors, &c.IsVirtual, &updatedAt,
	)
	if err != nil {
		return c, err
	}

	c.ClassTime, err = model.DecodeClassTime(classTime)
	if err != nil {
		return c, fmt.Errorf("course %s/%d: %w", c.Term, c.CRN, err)
	}
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if linkTag.Valid {
		c.LinkTag = linkTag.String
	}
	if instructors.Valid {
		c.Instructors = instructors.String
	}
	return c, nil
}

func notFound(term string, crn int) error {
	return fmt.Errorf("course %w: %s/%d", ErrNotFound, term, crn)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var ttlRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

// ParseTTL parses a duration string like "7d", "24h", "30m" into a time.Duration.
func ParseTTL(s string) (time.Duration, error) {
	m := ttlRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid format %q (use e.g. 7d, 24h, 30m, 60s)", s)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("unknown unit %q", m[2])
}
