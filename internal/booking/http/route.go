package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. Lifecycle changes are staff only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id/status", staffMiddleware, h.ChangeStatus)
		group.PATCH("/:id/schedule", staffMiddleware, h.Reschedule)
		group.DELETE("/:id", staffMiddleware, h.Delete)
	}
}
