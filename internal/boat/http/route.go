package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers boat routes. Reads are open to all
// authenticated members; mutations and permission grants are admin-only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/boats")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}

	admin := group.Group("")
	admin.Use(adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
		admin.GET("/:id/permissions", h.ListPermissions)
		admin.POST("/:id/permissions", h.GrantPermission)
		admin.DELETE("/:id/permissions/:memberId", h.RevokePermission)
	}
}
