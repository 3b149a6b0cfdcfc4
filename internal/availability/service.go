package availability

import (
	"context"
	"time"

	"github.com/nekogravitycat/gym-booking-backend/internal/booking"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
	"github.com/nekogravitycat/gym-booking-backend/internal/slot"
)

// MaxRangeDays caps occurrence listings.
const MaxRangeDays = 31

var (
	ErrTrainerNotFound = apperror.NotFound("trainer not found")
	ErrInvalidRange    = apperror.Validation("invalid date range")
)

type TrainerDirectory interface {
	TrainerExists(ctx context.Context, id string) (bool, error)
	IsAvailable(ctx context.Context, id string) (bool, error)
}

type SlotLister interface {
	ListSlots(ctx context.Context, trainerID string) ([]*slot.Slot, error)
}

type BookingReader interface {
	ListActiveBooking(ctx context.Context, slotID string, date time.Time) (*booking.Booking, error)
	ListActiveBetween(ctx context.Context, trainerID string, from, to time.Time) ([]*booking.Booking, error)
}

// BookableSlot pairs a slot with the date of its next free occurrence.
type BookableSlot struct {
	Slot *slot.Slot
	Date time.Time
}

// Occurrence is one concrete date of a slot.
type Occurrence struct {
	Slot            *slot.Slot
	Date            time.Time
	Bookable        bool
	ActiveBookingID string
}

type Service interface {
	// GetBookableSlots lists each of the trainer's slots whose next occurrence
	// on or after asOf is free. Taken occurrences are skipped, not rolled forward.
	// An asOf before today is treated as today.
	GetBookableSlots(ctx context.Context, trainerID string, asOf time.Time) ([]BookableSlot, error)
	// ListOccurrences expands every slot into its dates within [from, to].
	ListOccurrences(ctx context.Context, trainerID string, from, to time.Time) ([]Occurrence, error)
}

type service struct {
	trainers TrainerDirectory
	slots    SlotLister
	bookings BookingReader
	calendar schedule.Calendar
}

func NewService(trainers TrainerDirectory, slots SlotLister, bookings BookingReader, calendar schedule.Calendar) Service {
	return &service{
		trainers: trainers,
		slots:    slots,
		bookings: bookings,
		calendar: calendar,
	}
}

func (s *service) trainerAvailable(ctx context.Context, trainerID string) (bool, error) {
	exists, err := s.trainers.TrainerExists(ctx, trainerID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrTrainerNotFound
	}
	return s.trainers.IsAvailable(ctx, trainerID)
}

func (s *service) GetBookableSlots(ctx context.Context, trainerID string, asOf time.Time) ([]BookableSlot, error) {
	available, err := s.trainerAvailable(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if !available {
		return []BookableSlot{}, nil
	}

	slots, err := s.slots.ListSlots(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	asOf = schedule.DateOf(asOf)
	if today := s.calendar.Today(); asOf.Before(today) {
		asOf = today
	}

	result := make([]BookableSlot, 0, len(slots))
	for _, sl := range slots {
		date := schedule.NextOccurrence(sl.Day, asOf)
		active, err := s.bookings.ListActiveBooking(ctx, sl.ID, date)
		if err != nil {
			return nil, err
		}
		if active != nil {
			continue
		}
		result = append(result, BookableSlot{Slot: sl, Date: date})
	}
	return result, nil
}

func (s *service) ListOccurrences(ctx context.Context, trainerID string, from, to time.Time) ([]Occurrence, error) {
	from, to = schedule.DateOf(from), schedule.DateOf(to)
	if to.Before(from) {
		return nil, ErrInvalidRange.WithDetails(map[string]any{"reason": "from must not be after to"})
	}
	if to.Sub(from) >= MaxRangeDays*24*time.Hour {
		return nil, ErrInvalidRange.WithDetails(map[string]any{"reason": "range exceeds maximum", "max_days": MaxRangeDays})
	}

	available, err := s.trainerAvailable(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	slots, err := s.slots.ListSlots(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	active, err := s.bookings.ListActiveBetween(ctx, trainerID, from, to)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]string, len(active))
	for _, b := range active {
		taken[booking.LockKey(b.SlotID, b.Date)] = b.ID
	}

	var result []Occurrence
	for _, sl := range slots {
		for _, date := range schedule.Occurrences(sl.Day, from, to) {
			bookingID := taken[booking.LockKey(sl.ID, date)]
			result = append(result, Occurrence{
				Slot:            sl,
				Date:            date,
				Bookable:        available && bookingID == "",
				ActiveBookingID: bookingID,
			})
		}
	}

	sortOccurrences(result)
	return result, nil
}
