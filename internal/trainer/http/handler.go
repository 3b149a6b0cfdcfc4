package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/gym-booking-backend/internal/trainer"
)

type Handler struct {
	service trainer.Service
}

func NewHandler(service trainer.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListTrainersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Normalize(); err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}

	trainers, total, err := h.service.List(c.Request.Context(), trainer.Filter{
		Available: req.Available,
		Name:      req.Name,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TrainerResponse, len(trainers))
	for i, t := range trainers {
		items[i] = NewTrainerResponse(t)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTrainerResponse(t))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateTrainerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), trainer.CreateRequest{
		Name:      body.Name,
		Specialty: body.Specialty,
		Available: body.Available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewTrainerResponse(t))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateTrainerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.Update(c.Request.Context(), uri.ID, trainer.UpdateRequest{
		Name:      body.Name,
		Specialty: body.Specialty,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTrainerResponse(t))
}

// SetAvailability toggles whether the trainer's slots can be booked.
func (h *Handler) SetAvailability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body SetAvailabilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.SetAvailability(c.Request.Context(), uri.ID, *body.Available)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTrainerResponse(t))
}
