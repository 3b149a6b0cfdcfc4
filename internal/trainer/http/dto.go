package http

import (
	"time"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/gym-booking-backend/internal/trainer"
)

type TrainerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTrainerResponse(t *trainer.Trainer) TrainerResponse {
	return TrainerResponse{
		ID:        t.ID,
		Name:      t.Name,
		Specialty: t.Specialty,
		Available: t.Available,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type ListTrainersRequest struct {
	request.PageParams
	Available *bool  `form:"available"`
	Name      string `form:"name"`
}

type CreateTrainerRequest struct {
	Name      string `json:"name" binding:"required"`
	Specialty string `json:"specialty"`
	Available *bool  `json:"available"`
}

type UpdateTrainerRequest struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
}

type SetAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}
