package http

import (
	"github.com/nekogravitycat/gym-booking-backend/internal/availability"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

type BookableSlotResponse struct {
	SlotID    string `json:"slot_id"`
	TrainerID string `json:"trainer_id"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Date      string `json:"date"`
}

func NewBookableSlotResponse(b availability.BookableSlot) BookableSlotResponse {
	return BookableSlotResponse{
		SlotID:    b.Slot.ID,
		TrainerID: b.Slot.TrainerID,
		Day:       b.Slot.Day.String(),
		StartTime: b.Slot.Start().String(),
		EndTime:   b.Slot.End().String(),
		Date:      schedule.FormatDate(b.Date),
	}
}

// DayGroup is one weekday bucket of the grouped availability view.
type DayGroup struct {
	Day   string                 `json:"day"`
	Slots []BookableSlotResponse `json:"slots"`
}

type OccurrenceResponse struct {
	SlotID          string `json:"slot_id"`
	Day             string `json:"day"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Date            string `json:"date"`
	Bookable        bool   `json:"bookable"`
	ActiveBookingID string `json:"active_booking_id,omitempty"`
}

func NewOccurrenceResponse(o availability.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		SlotID:          o.Slot.ID,
		Day:             o.Slot.Day.String(),
		StartTime:       o.Slot.Start().String(),
		EndTime:         o.Slot.End().String(),
		Date:            schedule.FormatDate(o.Date),
		Bookable:        o.Bookable,
		ActiveBookingID: o.ActiveBookingID,
	}
}

type AvailabilityQuery struct {
	Date  string `form:"date"`
	Group string `form:"group" binding:"omitempty,oneof=day"`
}

type OccurrencesQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}
