package schedule

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" calendar date. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateOf strips the clock from t, keeping the calendar date as seen in t's location.
// Dates are always represented as midnight UTC so they compare and hash consistently.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NextOccurrence returns the first date on or after from that falls on day.
func NextOccurrence(day Weekday, from time.Time) time.Time {
	from = DateOf(from)
	delta := (int(day) - int(WeekdayOf(from)) + 7) % 7
	return from.AddDate(0, 0, delta)
}

// Occurrences lists every date in [from, to] falling on day.
func Occurrences(day Weekday, from, to time.Time) []time.Time {
	var out []time.Time
	to = DateOf(to)
	for d := NextOccurrence(day, from); !d.After(to); d = d.AddDate(0, 0, 7) {
		out = append(out, d)
	}
	return out
}

// Calendar knows the gym's timezone and the current time.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, Now: time.Now}
}

// Today is the current calendar date in the gym's timezone.
func (c Calendar) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now().In(loc))
}
