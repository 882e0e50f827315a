// Package catalog decodes upstream course catalog payloads into model.Course
// values.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/rcliao/schedulizer/internal/model"
)

const bannerDate = "01/02/2006"

// inPersonKeys mark a section as taught on campus.
var inPersonKeys = []string{"in-class", "in-person"}

// BannerResponse is the section search payload returned by Banner.
type BannerResponse struct {
	Success    bool            `json:"success"`
	TotalCount int             `json:"totalCount"`
	Data       []BannerSection `json:"data"`
}

// BannerSection is one section in a search response.
type BannerSection struct {
	Term                           string          `json:"term"`
	CourseReferenceNumber          string          `json:"courseReferenceNumber"`
	Subject                        string          `json:"subject"`
	CourseNumber                   string          `json:"courseNumber"`
	SequenceNumber                 string          `json:"sequenceNumber"`
	ScheduleTypeDescription        string          `json:"scheduleTypeDescription"`
	CourseTitle                    string          `json:"courseTitle"`
	MaximumEnrollment              int             `json:"maximumEnrollment"`
	Enrollment                     int             `json:"enrollment"`
	IsSectionLinked                bool            `json:"isSectionLinked"`
	LinkIdentifier                 *string         `json:"linkIdentifier"`
	InstructionalMethodDescription *string         `json:"instructionalMethodDescription"`
	Faculty                        []BannerFaculty `json:"faculty"`
	MeetingsFaculty                []BannerMeeting `json:"meetingsFaculty"`
}

// BannerFaculty is an instructor attached to a section.
type BannerFaculty struct {
	DisplayName  string  `json:"displayName"`
	EmailAddress *string `json:"emailAddress"`
}

// BannerMeeting wraps a section meeting time.
type BannerMeeting struct {
	Category    string            `json:"category"`
	MeetingTime BannerMeetingTime `json:"meetingTime"`
}

// BannerMeetingTime holds the schedule of one meeting. Times are HHMM and
// dates MM/DD/YYYY; both are null for asynchronous meetings.
type BannerMeetingTime struct {
	BeginTime *string `json:"beginTime"`
	EndTime   *string `json:"endTime"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Campus    *string `json:"campus"`
	Building  *string `json:"building"`
	Room      *string `json:"room"`
	Monday    bool    `json:"monday"`
	Tuesday   bool    `json:"tuesday"`
	Wednesday bool    `json:"wednesday"`
	Thursday  bool    `json:"thursday"`
	Friday    bool    `json:"friday"`
	Saturday  bool    `json:"saturday"`
	Sunday    bool    `json:"sunday"`
}

// Weekday returns the first flagged day, Monday = 0, or model.Async.
func (t BannerMeetingTime) Weekday() int {
	for i, on := range []bool{t.Monday, t.Tuesday, t.Wednesday, t.Thursday, t.Friday, t.Saturday, t.Sunday} {
		if on {
			return i
		}
	}
	return model.Async
}

// DecodeBanner decodes a Banner search payload. Sections or meetings that
// fail to decode are reported in the error slice and skipped; a malformed
// document returns a single error and no courses. Asynchronous meetings
// carry no schedule and are dropped.
func DecodeBanner(r io.Reader, term string) ([]model.Course, []error) {
	var resp BannerResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, []error{fmt.Errorf("decode banner payload: %w", err)}
	}

	var courses []model.Course
	var errs []error
	for i, s := range resp.Data {
		c, err := s.Course(term)
		if err != nil {
			errs = append(errs, fmt.Errorf("section %d: %w", i, err))
			continue
		}
		courses = append(courses, c)
	}
	return courses, errs
}

// Course converts the section. term overrides the section's own term when set.
func (s BannerSection) Course(term string) (model.Course, error) {
	crn, err := strconv.Atoi(strings.TrimSpace(s.CourseReferenceNumber))
	if err != nil {
		return model.Course{}, fmt.Errorf("crn %q: %w", s.CourseReferenceNumber, err)
	}
	if term == "" {
		term = s.Term
	}

	c := model.Course{
		Term:        term,
		Fac:         s.Subject,
		UID:         s.CourseNumber,
		CRN:         crn,
		ClassType:   s.ScheduleTypeDescription,
		Title:       s.CourseTitle,
		Section:     s.SequenceNumber,
		ClassTime:   []model.Meeting{},
		IsLinked:    s.IsSectionLinked,
		LinkTag:     deref(s.LinkIdentifier),
		SeatsFilled: s.Enrollment,
		MaxCapacity: s.MaximumEnrollment,
		Instructors: instructors(s.Faculty),
		IsVirtual:   isVirtual(deref(s.InstructionalMethodDescription)),
	}

	for i, mf := range s.MeetingsFaculty {
		mt := mf.MeetingTime
		if mt.Weekday() == model.Async {
			continue
		}
		m, err := mt.meeting()
		if err != nil {
			return model.Course{}, fmt.Errorf("crn %d meeting %d: %w", crn, i, err)
		}
		c.ClassTime = append(c.ClassTime, m)
	}
	return c, nil
}

func (t BannerMeetingTime) meeting() (model.Meeting, error) {
	start, err := model.ParseClock(deref(t.BeginTime))
	if err != nil {
		return model.Meeting{}, fmt.Errorf("begin time: %w", err)
	}
	end, err := model.ParseClock(deref(t.EndTime))
	if err != nil {
		return model.Meeting{}, fmt.Errorf("end time: %w", err)
	}
	ds, err := parseBannerDate(t.StartDate)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("start date: %w", err)
	}
	de, err := parseBannerDate(t.EndDate)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("end date: %w", err)
	}

	repeat := 7
	if ds == de {
		repeat = 0
	}

	return model.NewMeeting(model.MeetingParams{
		TimeStart:  start,
		TimeEnd:    end,
		Weekday:    t.Weekday(),
		DateStart:  ds,
		DateEnd:    de,
		RepeatDays: repeat,
		Location:   fmt.Sprintf("%s %s %s", deref(t.Campus), deref(t.Building), deref(t.Room)),
	})
}

func parseBannerDate(s string) (civil.Date, error) {
	t, err := time.Parse(bannerDate, strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

func instructors(faculty []BannerFaculty) string {
	names := make([]string, 0, len(faculty))
	for _, f := range faculty {
		names = append(names, fmt.Sprintf("%s (%s)", f.DisplayName, deref(f.EmailAddress)))
	}
	return strings.Join(names, ", ")
}

func isVirtual(method string) bool {
	method = strings.ToLower(method)
	for _, key := range inPersonKeys {
		if strings.Contains(method, key) {
			return false
		}
	}
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
