package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/schedulizer/internal/model"
)

// SearchParams holds parameters for searching courses.
type SearchParams struct {
	Term  string
	Query string
	Limit int
}

// Search finds courses whose title, code or instructors contain the query
// substring, case-insensitively. Every whitespace-separated word must match.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Course, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	var args []interface{}

	if p.Term != "" {
		where = append(where, "term = ?")
		args = append(args, p.Term)
	}

	for _, word := range strings.Fields(p.Query) {
		like := "%" + escapeLike(word) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR (fac || uid) LIKE ? ESCAPE '\' OR instructors LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE %s
		ORDER BY fac, uid, section, crn LIMIT ?`, courseColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.queryCourses(ctx, query, args...)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
