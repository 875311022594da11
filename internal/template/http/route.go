package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/templates")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/occurrences", h.Occurrences)
		group.GET("/:id", h.Get)
		group.POST("/:id/resolve", h.Resolve)
	}

	admin := group.Group("")
	admin.Use(adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
		admin.GET("/:id/exceptions", h.ListExceptions)
		admin.POST("/:id/exceptions", h.AddException)
	}
}
