// Package event publishes booking lifecycle events for downstream consumers.
package event

import (
	"context"
	"time"
)

type Type string

const (
	BookingCreated       Type = "booking.created"
	BookingStatusChanged Type = "booking.status_changed"
	BookingRescheduled   Type = "booking.rescheduled"
	BookingDeleted       Type = "booking.deleted"
)

// Event describes one committed change to a booking.
type Event struct {
	Type       Type
	BookingID  string
	TrainerID  string
	SlotID     string
	Date       string // YYYY-MM-DD
	Status     string
	PrevStatus string
	At         time.Time
}

// Publisher delivers events. Publishing happens after the change is committed,
// so a failure here never undoes the change.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
