package slot

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

var (
	ErrNotFound        = apperror.NotFound("slot not found")
	ErrTrainerNotFound = apperror.NotFound("trainer not found")
	ErrOverlap         = apperror.Conflict("slot overlaps an existing slot")
	ErrInvalidDay      = apperror.Validation("invalid day, expected Monday..Sunday")
	ErrInvalidWindow   = apperror.Validation("invalid time window, expected HH:MM with start before end")
)

// Slot is a weekly recurring window during which a trainer takes appointments.
type Slot struct {
	ID        string
	TrainerID string
	Day       schedule.Weekday
	Window    schedule.Window
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Slot) Start() schedule.Clock { return s.Window.Start }
func (s *Slot) End() schedule.Clock   { return s.Window.End }

// LockKey identifies the (trainer, day) scope that slot writes serialize on.
func LockKey(trainerID string, day schedule.Weekday) string {
	return fmt.Sprintf("slot:%s:%d", trainerID, int(day))
}

func overlapError(existing *Slot) error {
	return ErrOverlap.WithDetails(map[string]any{
		"slot_id":    existing.ID,
		"day":        existing.Day.String(),
		"start_time": existing.Start().String(),
		"end_time":   existing.End().String(),
	})
}

// compareSlots orders by weekday index then start time.
func compareSlots(a, b *Slot) int {
	if a.Day != b.Day {
		return int(a.Day) - int(b.Day)
	}
	if a.Window.Start != b.Window.Start {
		return int(a.Window.Start) - int(b.Window.Start)
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}
