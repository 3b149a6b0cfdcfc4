package slot

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/keylock"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

type memoryRepository struct {
	mu    sync.RWMutex
	slots map[string]Slot
	locks *keylock.Locker
}

// NewMemoryRepository returns a process-local Repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		slots: make(map[string]Slot),
		locks: keylock.New(),
	}
}

func (r *memoryRepository) WithinLock(ctx context.Context, keys []string, fn func(ctx context.Context, repo Repository) error) error {
	unlock, err := r.locks.Lock(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()

	return fn(ctx, r)
}

func (r *memoryRepository) Create(ctx context.Context, s *Slot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.slots[s.ID] = *s
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepository) ListByTrainer(ctx context.Context, trainerID string) ([]*Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var result []*Slot
	for _, s := range r.slots {
		if s.TrainerID == trainerID {
			result = append(result, &s)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(result, compareSlots)
	return result, nil
}

func (r *memoryRepository) FindOverlap(ctx context.Context, trainerID string, day schedule.Weekday, w schedule.Window, excludeID string) (*Slot, error) {
	slots, err := r.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	for _, s := range slots {
		if s.ID == excludeID || s.Day != day {
			continue
		}
		if s.Window.Overlaps(w) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) Update(ctx context.Context, s *Slot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.slots[s.ID]
	if !ok {
		return ErrNotFound
	}
	s.CreatedAt = cur.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	r.slots[s.ID] = *s
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; !ok {
		return ErrNotFound
	}
	delete(r.slots, id)
	return nil
}
