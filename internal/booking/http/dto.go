package http

import (
	"time"

	"github.com/nekogravitycat/gym-booking-backend/internal/booking"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

type BookingResponse struct {
	ID          string    `json:"id"`
	TrainerID   string    `json:"trainer_id"`
	SlotID      string    `json:"slot_id"`
	Day         string    `json:"day"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Date        string    `json:"date"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone,omitempty"`
	ClientEmail string    `json:"client_email,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		TrainerID:   b.TrainerID,
		SlotID:      b.SlotID,
		Day:         b.SlotDay.String(),
		StartTime:   b.SlotWindow.Start.String(),
		EndTime:     b.SlotWindow.End.String(),
		Date:        schedule.FormatDate(b.Date),
		ClientName:  b.ClientName,
		ClientPhone: b.Contact.Phone,
		ClientEmail: b.Contact.Email,
		Notes:       b.Notes,
		Status:      string(b.Status),
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	TrainerID   string `json:"trainer_id" binding:"required,uuid"`
	SlotID      string `json:"slot_id" binding:"required,uuid"`
	Date        string `json:"date" binding:"required"`
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email" binding:"omitempty,email"`
	Notes       string `json:"notes"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RescheduleRequest struct {
	SlotID string `json:"slot_id" binding:"required,uuid"`
	Date   string `json:"date" binding:"required"`
}

type ListBookingsRequest struct {
	request.PageParams
	TrainerID   string `form:"trainer_id" binding:"omitempty,uuid"`
	SlotID      string `form:"slot_id" binding:"omitempty,uuid"`
	ClientEmail string `form:"client_email"`
	ClientPhone string `form:"client_phone"`
	Status      string `form:"status"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	SortOrder   string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}
