package model

import (
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// ParseClock parses a time of day. Accepted forms are "15:04", "1504" (as
// served by the Banner catalog) and "15:04:05" with optional fractional
// seconds.
func ParseClock(s string) (civil.Time, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) == 4 && !strings.Contains(s, ":"):
		s = s[:2] + ":" + s[2:] + ":00"
	case strings.Count(s, ":") == 1:
		s += ":00"
	}
	t, err := civil.ParseTime(s)
	if err != nil {
		return civil.Time{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return t, nil
}

// ParseDay parses a weekday name ("monday", "Mon") or number into the
// Monday = 0 convention.
func ParseDay(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < Async || n > Sunday {
			return 0, fmt.Errorf("weekday %d out of range [-1, 6]", n)
		}
		return n, nil
	}
	if s == "" || s == "async" {
		return Async, nil
	}
	for i, name := range WeekdayNames {
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
