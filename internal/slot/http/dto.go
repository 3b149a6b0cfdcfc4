package http

import (
	"time"

	"github.com/nekogravitycat/gym-booking-backend/internal/slot"
)

type SlotResponse struct {
	ID        string    `json:"id"`
	TrainerID string    `json:"trainer_id"`
	Day       string    `json:"day"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSlotResponse(s *slot.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		TrainerID: s.TrainerID,
		Day:       s.Day.String(),
		StartTime: s.Start().String(),
		EndTime:   s.End().String(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// SlotBody is shared by create and update; all fields are required.
type SlotBody struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}
