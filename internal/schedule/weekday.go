package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of the week numbered Monday=1 through Sunday=7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekdays lists all days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday accepts a full English day name, case-insensitive.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for i := Monday; i <= Sunday; i++ {
		if strings.EqualFold(weekdayNames[i], s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// WeekdayOf returns the weekday of t in t's location.
func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// GroupByDay buckets items by weekday, preserving input order within each day.
func GroupByDay[T any](items []T, dayOf func(T) Weekday) map[Weekday][]T {
	out := make(map[Weekday][]T)
	for _, it := range items {
		d := dayOf(it)
		out[d] = append(out[d], it)
	}
	return out
}
