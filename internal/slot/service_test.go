package slot

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

type fakeDirectory map[string]bool

func (d fakeDirectory) TrainerExists(_ context.Context, id string) (bool, error) {
	return d[id], nil
}

func newTestService() Service {
	return NewService(NewMemoryRepository(), fakeDirectory{"t1": true, "t2": true}, zap.NewNop())
}

func create(t *testing.T, svc Service, trainerID, day, start, end string) *Slot {
	t.Helper()
	s, err := svc.CreateSlot(context.Background(), CreateRequest{
		TrainerID: trainerID,
		Day:       day,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return s
}

func TestCreateSlotOverlap(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	first := create(t, svc, "t1", "Monday", "09:00", "10:00")
	assert.Equal(t, schedule.Monday, first.Day)

	// Touching windows do not overlap.
	create(t, svc, "t1", "Monday", "10:00", "11:00")

	_, err := svc.CreateSlot(ctx, CreateRequest{TrainerID: "t1", Day: "Monday", StartTime: "09:30", EndTime: "10:30"})
	require.ErrorIs(t, err, ErrOverlap)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindConflict, appErr.Kind)
	assert.Equal(t, first.ID, appErr.Details["slot_id"])

	// Same window on another day or for another trainer is fine.
	create(t, svc, "t1", "Tuesday", "09:30", "10:30")
	create(t, svc, "t2", "Monday", "09:30", "10:30")
}

func TestCreateSlotValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"bad day", CreateRequest{TrainerID: "t1", Day: "Funday", StartTime: "09:00", EndTime: "10:00"}, ErrInvalidDay},
		{"bad clock", CreateRequest{TrainerID: "t1", Day: "Monday", StartTime: "9am", EndTime: "10:00"}, ErrInvalidWindow},
		{"end before start", CreateRequest{TrainerID: "t1", Day: "Monday", StartTime: "11:00", EndTime: "10:00"}, ErrInvalidWindow},
		{"empty window", CreateRequest{TrainerID: "t1", Day: "Monday", StartTime: "10:00", EndTime: "10:00"}, ErrInvalidWindow},
		{"unknown trainer", CreateRequest{TrainerID: "nobody", Day: "Monday", StartTime: "09:00", EndTime: "10:00"}, ErrTrainerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSlot(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	svc := newTestService()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.CreateSlot(context.Background(), CreateRequest{
				TrainerID: "t1",
				Day:       "Wednesday",
				StartTime: "18:00",
				EndTime:   "19:00",
			})
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrOverlap)
	}
	assert.Equal(t, 1, wins)

	slots, err := svc.ListSlots(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestUpdateSlot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	a := create(t, svc, "t1", "Monday", "09:00", "10:00")
	b := create(t, svc, "t1", "Monday", "11:00", "12:00")

	// Shrinking or moving within its own footprint does not collide with itself.
	moved, err := svc.UpdateSlot(ctx, a.ID, UpdateRequest{Day: "Monday", StartTime: "09:30", EndTime: "10:30"})
	require.NoError(t, err)
	assert.Equal(t, "09:30", moved.Start().String())

	_, err = svc.UpdateSlot(ctx, a.ID, UpdateRequest{Day: "Monday", StartTime: "10:30", EndTime: "11:30"})
	assert.ErrorIs(t, err, ErrOverlap)

	// Moving to another day frees the old window.
	_, err = svc.UpdateSlot(ctx, b.ID, UpdateRequest{Day: "friday", StartTime: "11:00", EndTime: "12:00"})
	require.NoError(t, err)
	create(t, svc, "t1", "Monday", "11:00", "12:00")

	_, err = svc.UpdateSlot(ctx, "missing", UpdateRequest{Day: "Monday", StartTime: "01:00", EndTime: "02:00"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentUpdateSingleWinner(t *testing.T) {
	ctx := context.Background()

	for round := range 50 {
		svc := newTestService()
		a := create(t, svc, "t1", "Monday", "09:00", "10:00")
		b := create(t, svc, "t1", "Tuesday", "09:00", "10:00")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, id := range []string{a.ID, b.ID} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.UpdateSlot(ctx, id, UpdateRequest{Day: "Wednesday", StartTime: "18:00", EndTime: "19:30"})
			}()
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, ErrOverlap)
		}
		require.Equal(t, 1, wins, "round %d", round)

		slots, err := svc.ListSlots(ctx, "t1")
		require.NoError(t, err)
		wednesday := 0
		for _, s := range slots {
			if s.Day == schedule.Wednesday {
				wednesday++
			}
		}
		assert.Equal(t, 1, wednesday)
	}
}

// cancelOnWrite cancels the caller's context right before the first write
// made under the lock.
type cancelOnWrite struct {
	Repository
	cancel context.CancelFunc
}

func (r *cancelOnWrite) WithinLock(ctx context.Context, keys []string, fn func(ctx context.Context, repo Repository) error) error {
	return r.Repository.WithinLock(ctx, keys, func(ctx context.Context, repo Repository) error {
		return fn(ctx, &cancelOnWrite{Repository: repo, cancel: r.cancel})
	})
}

func (r *cancelOnWrite) Create(ctx context.Context, s *Slot) error {
	r.cancel()
	return r.Repository.Create(ctx, s)
}

func (r *cancelOnWrite) Update(ctx context.Context, s *Slot) error {
	r.cancel()
	return r.Repository.Update(ctx, s)
}

func TestCancelledCallLeavesNoSlot(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, fakeDirectory{"t1": true}, zap.NewNop())
	existing := create(t, svc, "t1", "Monday", "09:00", "10:00")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelling := NewService(&cancelOnWrite{Repository: repo, cancel: cancel}, fakeDirectory{"t1": true}, zap.NewNop())

	_, err := cancelling.CreateSlot(ctx, CreateRequest{TrainerID: "t1", Day: "Friday", StartTime: "07:00", EndTime: "08:00"})
	require.ErrorIs(t, err, context.Canceled)

	slots, err := svc.ListSlots(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, existing.ID, slots[0].ID)

	// The freed lock lets the same window be created afterwards.
	create(t, svc, "t1", "Friday", "07:00", "08:00")
}

func TestDeleteSlot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	s := create(t, svc, "t1", "Sunday", "08:00", "09:00")
	require.NoError(t, svc.DeleteSlot(ctx, s.ID))

	assert.ErrorIs(t, svc.DeleteSlot(ctx, s.ID), ErrNotFound)
	_, err := svc.GetSlot(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSlotsOrdered(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	create(t, svc, "t1", "Sunday", "08:00", "09:00")
	create(t, svc, "t1", "Monday", "14:00", "15:00")
	create(t, svc, "t1", "Monday", "07:00", "08:00")
	create(t, svc, "t1", "Thursday", "06:00", "07:00")
	create(t, svc, "t2", "Monday", "05:00", "06:00")

	slots, err := svc.ListSlots(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, slots, 4)

	var got []string
	for _, s := range slots {
		got = append(got, s.Day.String()+" "+s.Start().String())
	}
	assert.Equal(t, []string{"Monday 07:00", "Monday 14:00", "Thursday 06:00", "Sunday 08:00"}, got)

	empty, err := svc.ListSlots(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
