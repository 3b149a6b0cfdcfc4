package schedule

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day stored as minutes since midnight.
type Clock int

const minutesPerDay = 24 * 60

// Midnight is the end of the day. It is only valid as a window end.
const Midnight Clock = minutesPerDay

// ParseClock parses a 24h "HH:MM" string. "24:00" parses to Midnight.
func ParseClock(s string) (Clock, error) {
	if s == "24:00" {
		return Midnight, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) Valid() bool {
	return c >= 0 && c <= Midnight
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Window is a half-open interval [Start, End) within a single day.
type Window struct {
	Start Clock
	End   Clock
}

// NewWindow parses and validates a window. Start must be strictly before End
// and only End may be 24:00.
func NewWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func (w Window) Validate() error {
	if !w.Start.Valid() || !w.End.Valid() || w.Start == Midnight {
		return fmt.Errorf("time out of range")
	}
	if w.Start >= w.End {
		return fmt.Errorf("start time must be before end time")
	}
	return nil
}

// Overlaps reports whether two half-open windows share any minute.
// Touching windows such as 09:00-10:00 and 10:00-11:00 do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && w.End > o.Start
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
