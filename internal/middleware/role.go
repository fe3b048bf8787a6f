package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/scanlead/backend/internal/auth"
	"github.com/scanlead/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles
// ("admin", "client").
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, ok := c.Get(auth.ContextRole)
		if !ok {
			response.Unauthorized(c, "missing account context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
