// Package middleware provides cross-cutting gin middleware.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InternalErrorMessage is the only detail a client sees for unexpected failures.
const InternalErrorMessage = "An unexpected error occurred."

// InternalErrorResponse is the 500 body. CorrelationID matches the server log entry.
type InternalErrorResponse struct {
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
}

// ErrorHandler turns errors recorded with c.Error into a 500 response.
// The error itself is only logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		respondInternalError(c, c.Errors.Last().Err)
	}
}

// Recovery converts panics into the same 500 response as ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		respondInternalError(c, nil)
	})
}

func respondInternalError(c *gin.Context, err error) {
	id := uuid.NewString()
	slog.Error("unexpected error",
		"correlation_id", id,
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
	)
	if c.Writer.Written() {
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, InternalErrorResponse{
		Message:       InternalErrorMessage,
		CorrelationID: id,
	})
}

// MessageResponse is the body for single-message errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, MessageResponse{Message: "Route Not Found"})
}
