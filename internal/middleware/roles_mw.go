package middleware

import (
	"net/http"

	"finance_tracker/internal/model"

	"github.com/gin-gonic/gin"
)

// RequireCapability rejects callers whose role does not grant capability.
// It must run after JWTAuthMiddleware.
func RequireCapability(capability model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Role not found in token, ensure JWT middleware runs first",
				"code":  "forbidden",
			})
			return
		}

		if !caller.Role.Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to access this resource",
				"code":  "forbidden",
			})
			return
		}

		c.Next()
	}
}
