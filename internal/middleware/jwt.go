package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scanlead/backend/internal/auth"
	"github.com/scanlead/backend/pkg/response"
)

// JWT returns a middleware that validates the bearer token and sets the
// account claims (auth.ContextClientID, auth.ContextRole, auth.ContextEmail)
// in the gin context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(auth.ContextClientID, claims.ClientID)
		c.Set(auth.ContextRole, claims.Role)
		c.Set(auth.ContextEmail, claims.Email)
		c.Next()
	}
}
