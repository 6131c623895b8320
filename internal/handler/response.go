package handler

import (
	"net/http"
	"strconv"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/logger"
	"finance_tracker/internal/middleware"
	"finance_tracker/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the public view of err. Server-side details only go to
// the log.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(apperr.KindOf(err))
	code, message := apperr.Public(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message, "code": code})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error(), "code": "invalid_request"})
}

// callerOrAbort reads the authenticated caller, answering 401 when the JWT
// middleware did not run.
func callerOrAbort(c *gin.Context) (model.Caller, bool) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "unauthorized"})
		return model.Caller{}, false
	}
	return caller, true
}

// queryInt parses an integer query parameter. Missing or malformed values
// yield def; anything that parses is passed on for the service to clamp.
func queryInt(c *gin.Context, key string, def int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
