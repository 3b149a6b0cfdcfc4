package trainer

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       sync.RWMutex
	trainers map[string]Trainer
}

// NewMemoryRepository returns a process-local Repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{trainers: make(map[string]Trainer)}
}

func (r *memoryRepository) Create(ctx context.Context, t *Trainer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.trainers[t.ID] = *t
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Trainer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trainers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *memoryRepository) List(ctx context.Context, filter Filter) ([]*Trainer, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	var matched []*Trainer
	for _, t := range r.trainers {
		if filter.Available != nil && t.Available != *filter.Available {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Name)) {
			continue
		}
		matched = append(matched, &t)
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *Trainer) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

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

func (r *memoryRepository) Update(ctx context.Context, t *Trainer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.trainers[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	r.trainers[t.ID] = *t
	return nil
}
