package schedule

import (
	"testing"

	"cloud.google.com/go/civil"

	"github.com/rcliao/schedulizer/internal/model"
)

func meeting(t *testing.T, weekday int, start, end, dateStart, dateEnd string, repeat int) model.Meeting {
	t.Helper()
	ts, err := model.ParseClock(start)
	if err != nil {
		t.Fatal(err)
	}
	te, err := model.ParseClock(end)
	if err != nil {
		t.Fatal(err)
	}
	ds, err := civil.ParseDate(dateStart)
	if err != nil {
		t.Fatal(err)
	}
	de, err := civil.ParseDate(dateEnd)
	if err != nil {
		t.Fatal(err)
	}
	m, err := model.NewMeeting(model.MeetingParams{
		TimeStart: ts, TimeEnd: te, Weekday: weekday,
		DateStart: ds, DateEnd: de, RepeatDays: repeat,
	})
	if err != nil {
		t.Fatalf("new meeting: %v", err)
	}
	return m
}

func weekly(t *testing.T, weekday int, start, end string) model.Meeting {
	t.Helper()
	return meeting(t, weekday, start, end, "2022-01-10", "2022-04-14", 7)
}

func course(crn int, meetings ...model.Meeting) model.Course {
	return model.Course{Fac: "MATH", UID: "1010U", CRN: crn, ClassTime: meetings}
}
