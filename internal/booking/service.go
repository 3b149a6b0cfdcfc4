package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/event"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
	"github.com/nekogravitycat/gym-booking-backend/internal/slot"
)

// SlotReader looks up slots by id.
type SlotReader interface {
	GetSlot(ctx context.Context, id string) (*slot.Slot, error)
}

// TrainerDirectory answers trainer existence and availability.
type TrainerDirectory interface {
	TrainerExists(ctx context.Context, id string) (bool, error)
	IsAvailable(ctx context.Context, id string) (bool, error)
}

type CreateRequest struct {
	TrainerID  string
	SlotID     string
	Date       time.Time
	ClientName string
	Contact    Contact
	Notes      string
	CreatedBy  string
}

type Service interface {
	CreateBooking(ctx context.Context, req CreateRequest) (*Booking, error)
	// ChangeStatus applies a lifecycle transition. Requesting the current status
	// is a no-op that returns the booking unchanged, including for terminal states.
	ChangeStatus(ctx context.Context, id string, status Status) (*Booking, error)
	// Reschedule moves a pending booking to another slot and/or date of the same trainer.
	Reschedule(ctx context.Context, id, newSlotID string, newDate time.Time) (*Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	GetBooking(ctx context.Context, id string) (*Booking, error)
	ListBookings(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// ListActiveBooking returns the active booking on (slotID, date) or nil.
	ListActiveBooking(ctx context.Context, slotID string, date time.Time) (*Booking, error)
	ListActiveBetween(ctx context.Context, trainerID string, from, to time.Time) ([]*Booking, error)

	// ExpireStalePending cancels pending bookings whose date has passed.
	// It handles at most one batch per call and reports how many were cancelled.
	ExpireStalePending(ctx context.Context) (int, error)
}

const expireBatchSize = 100

// maxStatusAttempts bounds compare-and-set retries. A booking can change
// status at most twice, so a few attempts always observe a settled state.
const maxStatusAttempts = 4

type service struct {
	repo      Repository
	slots     SlotReader
	trainers  TrainerDirectory
	publisher event.Publisher
	calendar  schedule.Calendar
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	slots SlotReader,
	trainers TrainerDirectory,
	publisher event.Publisher,
	calendar schedule.Calendar,
	logger *zap.Logger,
) Service {
	return &service{
		repo:      repo,
		slots:     slots,
		trainers:  trainers,
		publisher: publisher,
		calendar:  calendar,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (s *service) validateClient(name string, contact Contact) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyClientName
	}
	if strings.TrimSpace(contact.Phone) == "" && strings.TrimSpace(contact.Email) == "" {
		return ErrMissingContact
	}
	if contact.Email != "" {
		if err := s.validate.Var(contact.Email, "email"); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}

// validateOccurrence checks that date is a future-or-today occurrence of sl.
func (s *service) validateOccurrence(sl *slot.Slot, date time.Time) error {
	if schedule.WeekdayOf(date) != sl.Day {
		return ErrDayMismatch.WithDetails(map[string]any{
			"date":     schedule.FormatDate(date),
			"slot_day": sl.Day.String(),
		})
	}
	if date.Before(s.calendar.Today()) {
		return ErrDateInPast
	}
	return nil
}

func (s *service) checkTrainer(ctx context.Context, trainerID string) error {
	exists, err := s.trainers.TrainerExists(ctx, trainerID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTrainerNotFound
	}

	available, err := s.trainers.IsAvailable(ctx, trainerID)
	if err != nil {
		return err
	}
	if !available {
		return ErrTrainerUnavailable
	}
	return nil
}

func (s *service) CreateBooking(ctx context.Context, req CreateRequest) (*Booking, error) {
	if err := s.validateClient(req.ClientName, req.Contact); err != nil {
		return nil, err
	}

	date := schedule.DateOf(req.Date)

	sl, err := s.slots.GetSlot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if sl.TrainerID != req.TrainerID {
		return nil, ErrSlotTrainerMismatch
	}
	if err := s.checkTrainer(ctx, req.TrainerID); err != nil {
		return nil, err
	}
	if err := s.validateOccurrence(sl, date); err != nil {
		return nil, err
	}

	b := &Booking{
		TrainerID:  req.TrainerID,
		SlotID:     sl.ID,
		SlotDay:    sl.Day,
		SlotWindow: sl.Window,
		Date:       date,
		ClientName: strings.TrimSpace(req.ClientName),
		Contact: Contact{
			Phone: strings.TrimSpace(req.Contact.Phone),
			Email: strings.TrimSpace(req.Contact.Email),
		},
		Notes:     strings.TrimSpace(req.Notes),
		Status:    StatusPending,
		CreatedBy: req.CreatedBy,
	}

	err = s.repo.WithinLock(ctx, []string{LockKey(sl.ID, date)}, func(ctx context.Context, repo Repository) error {
		existing, err := repo.FindActive(ctx, sl.ID, date, "")
		if err != nil {
			return err
		}
		if existing != nil {
			return slotTakenError(existing)
		}
		return repo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("slot_id", b.SlotID),
		zap.String("date", schedule.FormatDate(b.Date)),
	)
	s.publish(ctx, event.BookingCreated, b, "")
	return b, nil
}

func (s *service) ChangeStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus.WithDetails(map[string]any{"status": string(status)})
	}

	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		cur, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.Status == status {
			return cur, nil
		}
		if !CanTransition(cur.Status, status) {
			return nil, transitionError(cur.Status, status)
		}

		updated, err := s.repo.UpdateStatus(ctx, id, cur.Status, status)
		if errors.Is(err, errStatusChanged) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("booking status changed",
			zap.String("booking_id", id),
			zap.String("from", string(cur.Status)),
			zap.String("to", string(status)),
		)
		s.publish(ctx, event.BookingStatusChanged, updated, cur.Status)
		return updated, nil
	}

	return nil, ErrConcurrentUpdate
}

func (s *service) Reschedule(ctx context.Context, id, newSlotID string, newDate time.Time) (*Booking, error) {
	date := schedule.DateOf(newDate)

	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != StatusPending {
		return nil, notPendingError(cur)
	}

	sl, err := s.slots.GetSlot(ctx, newSlotID)
	if err != nil {
		return nil, err
	}
	if sl.TrainerID != cur.TrainerID {
		return nil, ErrSlotTrainerMismatch
	}
	if err := s.validateOccurrence(sl, date); err != nil {
		return nil, err
	}

	var moved *Booking
	err = s.repo.WithinLock(ctx, []string{LockKey(sl.ID, date)}, func(ctx context.Context, repo Repository) error {
		existing, err := repo.FindActive(ctx, sl.ID, date, id)
		if err != nil {
			return err
		}
		if existing != nil {
			return slotTakenError(existing)
		}

		b, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != StatusPending {
			return notPendingError(b)
		}

		b.SlotID = sl.ID
		b.SlotDay = sl.Day
		b.SlotWindow = sl.Window
		b.Date = date
		if err := repo.Reschedule(ctx, b); err != nil {
			return err
		}
		moved = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking rescheduled",
		zap.String("booking_id", id),
		zap.String("slot_id", moved.SlotID),
		zap.String("date", schedule.FormatDate(moved.Date)),
	)
	s.publish(ctx, event.BookingRescheduled, moved, "")
	return moved, nil
}

func (s *service) DeleteBooking(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("booking deleted", zap.String("booking_id", id))
	s.publish(ctx, event.BookingDeleted, b, "")
	return nil
}

func (s *service) GetBooking(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListBookings(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListActiveBooking(ctx context.Context, slotID string, date time.Time) (*Booking, error) {
	date = schedule.DateOf(date)

	var active *Booking
	err := s.repo.WithinLock(ctx, []string{LockKey(slotID, date)}, func(ctx context.Context, repo Repository) error {
		b, err := repo.FindActive(ctx, slotID, date, "")
		active = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

func (s *service) ListActiveBetween(ctx context.Context, trainerID string, from, to time.Time) ([]*Booking, error) {
	return s.repo.ListActiveBetween(ctx, trainerID, from, to)
}

func (s *service) ExpireStalePending(ctx context.Context) (int, error) {
	stale, err := s.repo.ListPendingBefore(ctx, s.calendar.Today(), expireBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range stale {
		_, err := s.ChangeStatus(ctx, b.ID, StatusCancelled)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidTransition):
			// Deleted or confirmed in the meantime.
		default:
			return expired, err
		}
	}
	return expired, nil
}

func (s *service) publish(ctx context.Context, typ event.Type, b *Booking, prev Status) {
	e := event.Event{
		Type:       typ,
		BookingID:  b.ID,
		TrainerID:  b.TrainerID,
		SlotID:     b.SlotID,
		Date:       schedule.FormatDate(b.Date),
		Status:     string(b.Status),
		PrevStatus: string(prev),
		At:         time.Now().UTC(),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn("publish booking event failed",
			zap.String("type", string(typ)),
			zap.String("booking_id", b.ID),
			zap.Error(err),
		)
	}
}
