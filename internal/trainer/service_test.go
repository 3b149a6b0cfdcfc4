package trainer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() Service {
	return NewService(NewMemoryRepository(), zap.NewNop())
}

func ptr[T any](v T) *T { return &v }

func TestCreateTrainer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tr, err := svc.Create(ctx, CreateRequest{Name: "  Mia Chen ", Specialty: "Boxing"})
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, "Mia Chen", tr.Name)
	assert.True(t, tr.Available, "trainers start available")

	off, err := svc.Create(ctx, CreateRequest{Name: "Off Duty", Available: ptr(false)})
	require.NoError(t, err)
	assert.False(t, off.Available)

	_, err = svc.Create(ctx, CreateRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tr, err := svc.Create(ctx, CreateRequest{Name: "Leo"})
	require.NoError(t, err)

	exists, err := svc.TrainerExists(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.TrainerExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.IsAvailable(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetAvailability(ctx, tr.ID, false)
	require.NoError(t, err)
	available, err := svc.IsAvailable(ctx, tr.ID)
	require.NoError(t, err)
	assert.False(t, available)

	// Setting the same value again is a no-op.
	again, err := svc.SetAvailability(ctx, tr.ID, false)
	require.NoError(t, err)
	assert.False(t, again.Available)
}

func TestUpdateTrainer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tr, err := svc.Create(ctx, CreateRequest{Name: "Ana", Specialty: "Yoga"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, tr.ID, UpdateRequest{Specialty: ptr("Pilates")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "Pilates", updated.Specialty)

	_, err = svc.Update(ctx, tr.ID, UpdateRequest{Name: ptr(" ")})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Update(ctx, "missing", UpdateRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTrainers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	for _, name := range []string{"Alice", "Bob", "Alina"} {
		_, err := svc.Create(ctx, CreateRequest{Name: name})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateRequest{Name: "Alfred", Available: ptr(false)})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, Filter{Name: "al", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 3)

	items, total, err = svc.List(ctx, Filter{Name: "al", Available: ptr(true), Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, tr := range items {
		assert.True(t, tr.Available)
	}

	items, total, err = svc.List(ctx, Filter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, items, 1)
}
