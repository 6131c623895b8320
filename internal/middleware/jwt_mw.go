package middleware

import (
	"net/http"
	"strings"

	"finance_tracker/internal/model"
	"finance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey = "authUser"
	AuthRoleKey = "authRole"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "code": "unauthorized"})
}

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := jwtUtil.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(AuthUserKey, claims.UserID)
		c.Set(AuthRoleKey, claims.Role)

		c.Next()
	}
}

// CallerFromContext returns the identity JWTAuthMiddleware stored on the request.
func CallerFromContext(c *gin.Context) (model.Caller, bool) {
	userID, ok := c.Get(AuthUserKey)
	if !ok {
		return model.Caller{}, false
	}
	role, ok := c.Get(AuthRoleKey)
	if !ok {
		return model.Caller{}, false
	}
	caller := model.Caller{}
	caller.UserID, ok = userID.(string)
	if !ok {
		return model.Caller{}, false
	}
	caller.Role, ok = role.(model.Role)
	if !ok {
		return model.Caller{}, false
	}
	return caller, true
}
