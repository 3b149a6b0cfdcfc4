package booking

import (
	"fmt"
	"slices"
	"time"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

var (
	ErrNotFound            = apperror.NotFound("booking not found")
	ErrSlotNotFound        = apperror.NotFound("slot not found")
	ErrTrainerNotFound     = apperror.NotFound("trainer not found")
	ErrSlotTaken           = apperror.Conflict("slot already booked for this date")
	ErrConcurrentUpdate    = apperror.Conflict("booking was modified concurrently, retry")
	ErrInvalidTransition   = apperror.InvalidTransition("invalid status transition")
	ErrNotPending          = apperror.InvalidState("only pending bookings can be rescheduled")
	ErrInvalidStatus       = apperror.Validation("invalid booking status")
	ErrEmptyClientName     = apperror.Validation("client name cannot be empty")
	ErrMissingContact      = apperror.Validation("client phone or email is required")
	ErrInvalidEmail        = apperror.Validation("invalid client email")
	ErrSlotTrainerMismatch = apperror.Validation("slot does not belong to trainer")
	ErrTrainerUnavailable  = apperror.Validation("trainer is not available")
	ErrDayMismatch         = apperror.Validation("date does not fall on the slot's weekday")
	ErrDateInPast          = apperror.Validation("cannot book a date in the past")
	ErrForbidden           = apperror.Forbidden("booking belongs to another client")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses hold a slot occurrence. At most one booking per (slot, date)
// may be in one of these.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusCompleted}

// transitions lists the allowed target statuses for each status.
// Staying in the same status is always allowed and handled as a no-op.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusCompleted},
	StatusConfirmed: {StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus.WithDetails(map[string]any{"status": s})
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Active() bool {
	return slices.Contains(ActiveStatuses, s)
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransition reports whether a booking in status from may move to to.
func CanTransition(from, to Status) bool {
	if from == to {
		return from.Valid()
	}
	return slices.Contains(transitions[from], to)
}

// Contact holds how to reach the client. At least one field is set.
type Contact struct {
	Phone string
	Email string
}

// Booking is a client's appointment on one concrete date of a slot.
// Slot window fields are a snapshot taken at booking time, so the booking stays
// readable after the slot is edited or deleted.
type Booking struct {
	ID         string
	TrainerID  string
	SlotID     string
	SlotDay    schedule.Weekday
	SlotWindow schedule.Window
	Date       time.Time
	ClientName string
	Contact    Contact
	Notes      string
	Status     Status
	CreatedBy  string // subject of the token that created it
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Filter struct {
	CreatedBy   string
	TrainerID   string
	SlotID      string
	ClientEmail string
	ClientPhone string
	Statuses    []Status
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
	SortOrder   string // ASC or DESC on date, default ASC
}

// LockKey identifies the (slot, date) scope that booking writes serialize on.
func LockKey(slotID string, date time.Time) string {
	return fmt.Sprintf("booking:%s:%s", slotID, schedule.FormatDate(date))
}

func slotTakenError(existing *Booking) error {
	return ErrSlotTaken.WithDetails(map[string]any{
		"booking_id": existing.ID,
		"slot_id":    existing.SlotID,
		"date":       schedule.FormatDate(existing.Date),
	})
}

func transitionError(from, to Status) error {
	return ErrInvalidTransition.WithDetails(map[string]any{
		"from": string(from),
		"to":   string(to),
	})
}

func notPendingError(b *Booking) error {
	return ErrNotPending.WithDetails(map[string]any{
		"booking_id": b.ID,
		"status":     string(b.Status),
	})
}
