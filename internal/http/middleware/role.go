package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole restricts a route group to sessions carrying one of the
// allowed roles. RequireAuth must run earlier on the chain to populate
// the role from the access token.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("user_role")
		role, ok := v.(string)
		if ok {
			for _, a := range allowed {
				if a == role {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
