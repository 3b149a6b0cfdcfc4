package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers slot routes, both nested under trainers and by slot id.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	trainers := g.Group("/trainers/:id/slots")
	trainers.Use(authMiddleware)
	{
		trainers.GET("", h.ListByTrainer)
		trainers.POST("", staffMiddleware, h.Create)
	}

	slots := g.Group("/slots")
	slots.Use(authMiddleware)
	{
		slots.GET("/:id", h.Get)
		slots.PUT("/:id", staffMiddleware, h.Update)
		slots.DELETE("/:id", staffMiddleware, h.Delete)
	}
}
