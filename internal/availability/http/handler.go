package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/gym-booking-backend/internal/availability"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

type Handler struct {
	service  availability.Service
	calendar schedule.Calendar
}

func NewHandler(service availability.Service, calendar schedule.Calendar) *Handler {
	return &Handler{service: service, calendar: calendar}
}

// Bookable lists the trainer's free slots as of ?date (default today, never earlier).
// With ?group=day the result is bucketed by weekday.
func (h *Handler) Bookable(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	asOf := h.calendar.Today()
	if q.Date != "" {
		d, err := schedule.ParseDate(q.Date)
		if err != nil {
			response.BadRequest(c, err.Error(), nil)
			return
		}
		if d.After(asOf) {
			asOf = d
		}
	}

	slots, err := h.service.GetBookableSlots(c.Request.Context(), uri.ID, asOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	if q.Group == "day" {
		grouped := schedule.GroupByDay(slots, func(b availability.BookableSlot) schedule.Weekday { return b.Slot.Day })
		days := make([]DayGroup, 0, len(grouped))
		for _, d := range schedule.Weekdays {
			bucket, ok := grouped[d]
			if !ok {
				continue
			}
			group := DayGroup{Day: d.String(), Slots: make([]BookableSlotResponse, len(bucket))}
			for i, s := range bucket {
				group.Slots[i] = NewBookableSlotResponse(s)
			}
			days = append(days, group)
		}
		c.JSON(http.StatusOK, gin.H{"as_of": schedule.FormatDate(asOf), "days": days})
		return
	}

	items := make([]BookableSlotResponse, len(slots))
	for i, s := range slots {
		items[i] = NewBookableSlotResponse(s)
	}
	c.JSON(http.StatusOK, gin.H{"as_of": schedule.FormatDate(asOf), "items": items})
}

func (h *Handler) Occurrences(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var q OccurrencesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	from, err := schedule.ParseDate(q.From)
	if err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}
	to, err := schedule.ParseDate(q.To)
	if err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}

	occ, err := h.service.ListOccurrences(c.Request.Context(), uri.ID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OccurrenceResponse, len(occ))
	for i, o := range occ {
		items[i] = NewOccurrenceResponse(o)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
