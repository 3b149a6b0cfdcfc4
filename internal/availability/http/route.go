package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/trainers/:id")
	group.Use(authMiddleware)
	{
		group.GET("/availability", h.Bookable)
		group.GET("/occurrences", h.Occurrences)
	}
}
