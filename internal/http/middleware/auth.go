package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lessismore22/Quickfund/internal/auth"
)

// RequireAuth authenticates the request from the access-token cookie and
// stores the caller's identity on the gin context for downstream handlers.
func RequireAuth(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := accessClaims(c, jwt)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

func accessClaims(c *gin.Context, jwt *auth.JWTManager) (*auth.Claims, bool) {
	cookie, err := c.Request.Cookie(auth.AccessCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := jwt.Parse(cookie.Value)
	if err != nil || claims.Type != "access" {
		return nil, false
	}
	return claims, true
}
