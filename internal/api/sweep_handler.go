package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oarlockdev/boathouse-backend/internal/sweep"
)

// RunSweep triggers one maintenance sweep on demand, outside the
// regular interval. Useful for operators after fixing data by hand.
func RunSweep(svc *sweep.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
