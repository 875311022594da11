package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all member-related routes (including Auth).
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// Public Routes
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// Authenticated Routes
	g.GET("/me", authMiddleware, h.Me)

	// Admin Routes
	membersGroup := g.Group("/members")
	membersGroup.Use(authMiddleware, adminMiddleware)
	{
		membersGroup.GET("", h.List)
		membersGroup.GET("/:id", h.Get)
		membersGroup.DELETE("/:id", h.Delete)
	}
}
