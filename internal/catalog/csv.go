package catalog

import (
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gocarina/gocsv"

	"github.com/rcliao/schedulizer/internal/model"
	"github.com/rcliao/schedulizer/internal/scorer"
)

// CSVRow is one meeting of a section in the flat catalog format. Section
// columns repeat on every row of the same CRN; a row with an empty weekday
// declares a section without meetings.
type CSVRow struct {
	Term        string `csv:"term"`
	Fac         string `csv:"fac"`
	UID         string `csv:"uid"`
	CRN         int    `csv:"crn"`
	ClassType   string `csv:"class_type"`
	Title       string `csv:"title"`
	Section     string `csv:"section"`
	IsLinked    bool   `csv:"is_linked"`
	LinkTag     string `csv:"link_tag"`
	SeatsFilled int    `csv:"seats_filled"`
	MaxCapacity int    `csv:"max_capacity"`
	Instructors string `csv:"instructors"`
	IsVirtual   bool   `csv:"is_virtual"`
	Weekday     string `csv:"weekday"`
	TimeStart   string `csv:"time_start"`
	TimeEnd     string `csv:"time_end"`
	DateStart   string `csv:"date_start"`
	DateEnd     string `csv:"date_end"`
	RepeatDays  int    `csv:"repeat_days"`
	Location    string `csv:"location"`
}

// LoadCSV reads a flat catalog. Rows are grouped by CRN in first-seen order.
// A row whose meeting does not validate is reported and its section skipped.
func LoadCSV(r io.Reader) ([]model.Course, []error) {
	var rows []*CSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, []error{fmt.Errorf("parse catalog csv: %w", err)}
	}

	var order []int
	byCRN := map[int]*model.Course{}
	bad := map[int]bool{}
	var errs []error

	for i, row := range rows {
		line := i + 2 // header is line 1
		if row.CRN <= 0 {
			errs = append(errs, fmt.Errorf("line %d: crn must be positive, got %d", line, row.CRN))
			continue
		}
		c, ok := byCRN[row.CRN]
		if !ok {
			c = row.course()
			byCRN[row.CRN] = c
			order = append(order, row.CRN)
		}
		if strings.TrimSpace(row.Weekday) == "" {
			continue
		}
		m, err := row.meeting()
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d crn %d: %w", line, row.CRN, err))
			bad[row.CRN] = true
			continue
		}
		c.ClassTime = append(c.ClassTime, m)
	}

	courses := make([]model.Course, 0, len(order))
	for _, crn := range order {
		if bad[crn] {
			continue
		}
		courses = append(courses, *byCRN[crn])
	}
	return courses, errs
}

func (row *CSVRow) course() *model.Course {
	return &model.Course{
		Term:        row.Term,
		Fac:         row.Fac,
		UID:         row.UID,
		CRN:         row.CRN,
		ClassType:   row.ClassType,
		Title:       row.Title,
		Section:     row.Section,
		ClassTime:   []model.Meeting{},
		IsLinked:    row.IsLinked,
		LinkTag:     row.LinkTag,
		SeatsFilled: row.SeatsFilled,
		MaxCapacity: row.MaxCapacity,
		Instructors: row.Instructors,
		IsVirtual:   row.IsVirtual,
	}
}

func (row *CSVRow) meeting() (model.Meeting, error) {
	day, err := model.ParseDay(row.Weekday)
	if err != nil {
		return model.Meeting{}, err
	}
	start, err := model.ParseClock(row.TimeStart)
	if err != nil {
		return model.Meeting{}, err
	}
	end, err := model.ParseClock(row.TimeEnd)
	if err != nil {
		return model.Meeting{}, err
	}
	ds, err := civil.ParseDate(strings.TrimSpace(row.DateStart))
	if err != nil {
		return model.Meeting{}, fmt.Errorf("date_start: %w", err)
	}
	de, err := civil.ParseDate(strings.TrimSpace(row.DateEnd))
	if err != nil {
		return model.Meeting{}, fmt.Errorf("date_end: %w", err)
	}
	return model.NewMeeting(model.MeetingParams{
		TimeStart:  start,
		TimeEnd:    end,
		Weekday:    day,
		DateStart:  ds,
		DateEnd:    de,
		RepeatDays: row.RepeatDays,
		Location:   row.Location,
	})
}

// CSVRows flattens courses into catalog rows, the inverse of LoadCSV.
func CSVRows(courses []model.Course) []*CSVRow {
	var rows []*CSVRow
	for _, c := range courses {
		base := CSVRow{
			Term: c.Term, Fac: c.Fac, UID: c.UID, CRN: c.CRN,
			ClassType: c.ClassType, Title: c.Title, Section: c.Section,
			IsLinked: c.IsLinked, LinkTag: c.LinkTag,
			SeatsFilled: c.SeatsFilled, MaxCapacity: c.MaxCapacity,
			Instructors: c.Instructors, IsVirtual: c.IsVirtual,
		}
		if len(c.ClassTime) == 0 {
			row := base
			rows = append(rows, &row)
			continue
		}
		for _, m := range c.ClassTime {
			row := base
			if m.IsAsync() {
				row.Weekday = "async"
			} else {
				row.Weekday = model.WeekdayNames[m.Weekday]
			}
			row.TimeStart = m.TimeStart.String()
			row.TimeEnd = m.TimeEnd.String()
			row.DateStart = m.DateStart.String()
			row.DateEnd = m.DateEnd.String()
			row.RepeatDays = m.RepeatDays
			row.Location = m.Location
			rows = append(rows, &row)
		}
	}
	return rows
}

// WriteCSV writes courses in the flat catalog format.
func WriteCSV(w io.Writer, courses []model.Course) error {
	return gocsv.Marshal(CSVRows(courses), w)
}

// ScoreRow is one line of a score report.
type ScoreRow struct {
	Rank         int     `csv:"rank"`
	CRN          int     `csv:"crn"`
	Code         string  `csv:"code"`
	Title        string  `csv:"title"`
	Score        float64 `csv:"score"`
	StartAfter   float64 `csv:"start_after"`
	EndBefore    float64 `csv:"end_before"`
	Virtual      float64 `csv:"virtual"`
	MinSeatsOpen float64 `csv:"min_seats_open"`
	MaxCapacity  float64 `csv:"max_capacity"`
}

// WriteScoresCSV writes ranked results, one row per course, with each
// criterion's contribution in its own column.
func WriteScoresCSV(w io.Writer, results []scorer.Result) error {
	rows := make([]*ScoreRow, 0, len(results))
	for i, r := range results {
		rows = append(rows, &ScoreRow{
			Rank:         i + 1,
			CRN:          r.CRN,
			Code:         r.Code,
			Title:        r.Title,
			Score:        r.Score,
			StartAfter:   r.Parts[scorer.PartStartAfter],
			EndBefore:    r.Parts[scorer.PartEndBefore],
			Virtual:      r.Parts[scorer.PartVirtual],
			MinSeatsOpen: r.Parts[scorer.PartMinSeatsOpen],
			MaxCapacity:  r.Parts[scorer.PartMaxCapacity],
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write score csv: %w", err)
	}
	return nil
}
