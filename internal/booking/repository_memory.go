package booking

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/keylock"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

type memoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]Booking
	locks    *keylock.Locker
}

// NewMemoryRepository returns a process-local Repository for development and tests.
// It enforces the same one-active-booking-per-occurrence rule as the database index.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		bookings: make(map[string]Booking),
		locks:    keylock.New(),
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

// activeLocked must be called with mu held.
func (r *memoryRepository) activeLocked(slotID string, date time.Time, excludeID string) *Booking {
	for _, b := range r.bookings {
		if b.ID == excludeID || b.SlotID != slotID || !b.Date.Equal(date) || !b.Status.Active() {
			continue
		}
		return &b
	}
	return nil
}

func (r *memoryRepository) Create(ctx context.Context, b *Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b.Date = schedule.DateOf(b.Date)
	if b.Status.Active() && r.activeLocked(b.SlotID, b.Date, "") != nil {
		return ErrSlotTaken
	}

	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.bookings[b.ID] = *b
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memoryRepository) matching(keep func(*Booking) bool) []*Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Booking
	for _, b := range r.bookings {
		if keep(&b) {
			out = append(out, &b)
		}
	}
	return out
}

func compareByDate(a, b *Booking) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if a.SlotWindow.Start != b.SlotWindow.Start {
		return int(a.SlotWindow.Start) - int(b.SlotWindow.Start)
	}
	return strings.Compare(a.ID, b.ID)
}

func (r *memoryRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	matched := r.matching(func(b *Booking) bool {
		switch {
		case filter.CreatedBy != "" && b.CreatedBy != filter.CreatedBy:
			return false
		case filter.TrainerID != "" && b.TrainerID != filter.TrainerID:
			return false
		case filter.SlotID != "" && b.SlotID != filter.SlotID:
			return false
		case filter.ClientEmail != "" && !strings.EqualFold(b.Contact.Email, filter.ClientEmail):
			return false
		case filter.ClientPhone != "" && b.Contact.Phone != filter.ClientPhone:
			return false
		case len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, b.Status):
			return false
		case filter.DateFrom != nil && b.Date.Before(*filter.DateFrom):
			return false
		case filter.DateTo != nil && b.Date.After(*filter.DateTo):
			return false
		}
		return true
	})

	slices.SortFunc(matched, compareByDate)
	if strings.EqualFold(filter.SortOrder, "DESC") {
		slices.Reverse(matched)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	total := len(matched)
	start := min((filter.Page-1)*filter.PageSize, total)
	end := min(start+filter.PageSize, total)

	return matched[start:end], total, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *memoryRepository) FindActive(ctx context.Context, slotID string, date time.Time, excludeID string) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.activeLocked(slotID, schedule.DateOf(date), excludeID), nil
}

func (r *memoryRepository) ListActiveBetween(ctx context.Context, trainerID string, from, to time.Time) ([]*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	from, to = schedule.DateOf(from), schedule.DateOf(to)
	out := r.matching(func(b *Booking) bool {
		return b.TrainerID == trainerID && b.Status.Active() && !b.Date.Before(from) && !b.Date.After(to)
	})
	slices.SortFunc(out, compareByDate)
	return out, nil
}

func (r *memoryRepository) ListPendingBefore(ctx context.Context, date time.Time, limit int) ([]*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	date = schedule.DateOf(date)
	out := r.matching(func(b *Booking) bool {
		return b.Status == StatusPending && b.Date.Before(date)
	})
	slices.SortFunc(out, compareByDate)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != from {
		return nil, errStatusChanged
	}

	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	r.bookings[id] = b
	return &b, nil
}

func (r *memoryRepository) Reschedule(ctx context.Context, b *Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != StatusPending {
		return notPendingError(&cur)
	}

	date := schedule.DateOf(b.Date)
	if r.activeLocked(b.SlotID, date, b.ID) != nil {
		return ErrSlotTaken
	}

	cur.SlotID = b.SlotID
	cur.SlotDay = b.SlotDay
	cur.SlotWindow = b.SlotWindow
	cur.Date = date
	cur.UpdatedAt = time.Now().UTC()
	r.bookings[b.ID] = cur

	*b = cur
	return nil
}
