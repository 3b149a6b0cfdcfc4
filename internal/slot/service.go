package slot

import (
	"context"

	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

// TrainerDirectory answers whether a trainer exists.
type TrainerDirectory interface {
	TrainerExists(ctx context.Context, id string) (bool, error)
}

type CreateRequest struct {
	TrainerID string
	Day       string
	StartTime string
	EndTime   string
}

type UpdateRequest struct {
	Day       string
	StartTime string
	EndTime   string
}

type Service interface {
	CreateSlot(ctx context.Context, req CreateRequest) (*Slot, error)
	UpdateSlot(ctx context.Context, id string, req UpdateRequest) (*Slot, error)
	DeleteSlot(ctx context.Context, id string) error
	GetSlot(ctx context.Context, id string) (*Slot, error)
	// ListSlots returns the trainer's slots ordered by weekday then start time.
	ListSlots(ctx context.Context, trainerID string) ([]*Slot, error)
}

type service struct {
	repo     Repository
	trainers TrainerDirectory
	logger   *zap.Logger
}

func NewService(repo Repository, trainers TrainerDirectory, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		trainers: trainers,
		logger:   logger,
	}
}

func parseDayWindow(day, start, end string) (schedule.Weekday, schedule.Window, error) {
	d, err := schedule.ParseWeekday(day)
	if err != nil {
		return 0, schedule.Window{}, ErrInvalidDay
	}
	w, err := schedule.NewWindow(start, end)
	if err != nil {
		return 0, schedule.Window{}, ErrInvalidWindow.WithDetails(map[string]any{"reason": err.Error()})
	}
	return d, w, nil
}

func (s *service) CreateSlot(ctx context.Context, req CreateRequest) (*Slot, error) {
	day, window, err := parseDayWindow(req.Day, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	exists, err := s.trainers.TrainerExists(ctx, req.TrainerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTrainerNotFound
	}

	created := &Slot{
		TrainerID: req.TrainerID,
		Day:       day,
		Window:    window,
	}

	err = s.repo.WithinLock(ctx, []string{LockKey(req.TrainerID, day)}, func(ctx context.Context, repo Repository) error {
		existing, err := repo.FindOverlap(ctx, req.TrainerID, day, window, "")
		if err != nil {
			return err
		}
		if existing != nil {
			return overlapError(existing)
		}
		return repo.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("slot created",
		zap.String("slot_id", created.ID),
		zap.String("trainer_id", created.TrainerID),
		zap.Stringer("day", created.Day),
		zap.Stringer("window", created.Window),
	)
	return created, nil
}

func (s *service) UpdateSlot(ctx context.Context, id string, req UpdateRequest) (*Slot, error) {
	day, window, err := parseDayWindow(req.Day, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	keys := []string{LockKey(current.TrainerID, current.Day), LockKey(current.TrainerID, day)}

	var updated *Slot
	err = s.repo.WithinLock(ctx, keys, func(ctx context.Context, repo Repository) error {
		cur, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		existing, err := repo.FindOverlap(ctx, cur.TrainerID, day, window, cur.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return overlapError(existing)
		}

		cur.Day = day
		cur.Window = window
		if err := repo.Update(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("slot updated",
		zap.String("slot_id", updated.ID),
		zap.Stringer("day", updated.Day),
		zap.Stringer("window", updated.Window),
	)
	return updated, nil
}

// DeleteSlot removes the slot. Bookings that reference it are left untouched.
func (s *service) DeleteSlot(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("slot deleted", zap.String("slot_id", id))
	return nil
}

func (s *service) GetSlot(ctx context.Context, id string) (*Slot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListSlots(ctx context.Context, trainerID string) ([]*Slot, error) {
	return s.repo.ListByTrainer(ctx, trainerID)
}
