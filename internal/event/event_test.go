package event

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleEvent() Event {
	return Event{
		Type:       BookingStatusChanged,
		BookingID:  "b1",
		TrainerID:  "t1",
		SlotID:     "s1",
		Date:       "2026-10-19",
		Status:     "confirmed",
		PrevStatus: "pending",
		At:         time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
	}
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))

	entries := logs.FilterMessage("booking event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "booking.status_changed", fields["type"])
	assert.Equal(t, "b1", fields["booking_id"])
	assert.Equal(t, "pending", fields["prev_status"])
}

func TestStreamPublisher(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	stream := "test:booking-events:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), stream) })

	p := NewStreamPublisher(client, stream, 100)
	require.NoError(t, p.Publish(ctx, sampleEvent()))

	msgs, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "booking.status_changed", msgs[0].Values["type"])
	assert.Equal(t, "2026-10-19", msgs[0].Values["date"])
	assert.Equal(t, "2026-10-15T08:00:00Z", msgs[0].Values["at"])
}

func TestStreamPublisherDefaultStream(t *testing.T) {
	p := NewStreamPublisher(nil, "", 0)
	assert.Equal(t, DefaultStream, p.stream)
}
