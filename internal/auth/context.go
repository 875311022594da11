package auth

import "github.com/gin-gonic/gin"

// GetMemberID returns the authenticated member's ID or empty string.
func GetMemberID(c *gin.Context) string {
	if v, ok := c.Get("memberID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetMemberEmail returns the authenticated member's email or empty string.
func GetMemberEmail(c *gin.Context) string {
	if v, ok := c.Get("memberEmail"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
