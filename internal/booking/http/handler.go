package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/gym-booking-backend/internal/auth"
	"github.com/nekogravitycat/gym-booking-backend/internal/booking"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	date, err := schedule.ParseDate(body.Date)
	if err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateRequest{
		TrainerID:  body.TrainerID,
		SlotID:     body.SlotID,
		Date:       date,
		ClientName: body.ClientName,
		Contact: booking.Contact{
			Phone: body.ClientPhone,
			Email: body.ClientEmail,
		},
		Notes:     body.Notes,
		CreatedBy: auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Clients only see their own bookings. Staff see everything.
	if auth.GetRole(c) != auth.RoleStaff && b.CreatedBy != auth.GetUserID(c) {
		response.Error(c, booking.ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Normalize(); err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}

	filter := booking.Filter{
		TrainerID:   req.TrainerID,
		SlotID:      req.SlotID,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		Page:        req.Page,
		PageSize:    req.PageSize,
		SortOrder:   req.SortOrder,
	}

	// A client is always scoped to their own bookings, whatever they filter on.
	if auth.GetRole(c) != auth.RoleStaff {
		filter.CreatedBy = auth.GetUserID(c)
	}

	if req.Status != "" {
		status, err := booking.ParseStatus(req.Status)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Statuses = []booking.Status{status}
	}

	var ok bool
	if filter.DateFrom, ok = parseOptionalDate(c, req.DateFrom); !ok {
		return
	}
	if filter.DateTo, ok = parseOptionalDate(c, req.DateTo); !ok {
		return
	}

	bookings, total, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body ChangeStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	status, err := booking.ParseStatus(body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.ChangeStatus(c.Request.Context(), uri.ID, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Reschedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body RescheduleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	date, err := schedule.ParseDate(body.Date)
	if err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}

	b, err := h.service.Reschedule(c.Request.Context(), uri.ID, body.SlotID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseOptionalDate(c *gin.Context, s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	d, err := schedule.ParseDate(s)
	if err != nil {
		response.BadRequest(c, err.Error(), nil)
		return nil, false
	}
	return &d, true
}
