package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers trainer routes. Reads need a token, writes need staff.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/trainers")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", staffMiddleware, h.Create)
		group.PATCH("/:id", staffMiddleware, h.Update)
		group.PUT("/:id/availability", staffMiddleware, h.SetAvailability)
	}
}
