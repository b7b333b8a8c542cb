package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/idempotency"
	"gestaopro/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		var body gin.H

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			status = appErr.HTTPStatus
			body = gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
			body = gin.H{
				"code":    apperror.CodeInternal,
				"message": "Internal server error",
				"details": map[string]any{
					"request_id": c.GetString("request_id"),
				},
			}
		}

		failIdempotencyKey(c, status, body)
		c.JSON(status, body)
	}
}

// failIdempotencyKey stores the error response so a retry replays it.
func failIdempotencyKey(c *gin.Context, status int, body any) {
	key := c.GetString(ctxIdempotencyKey)
	if key == "" {
		return
	}
	v, _ := c.Get(ctxIdempotencyStore)
	store, ok := v.(idempotency.Store)
	if !ok || store == nil {
		return
	}
	if err := store.FailKey(c.Request.Context(), key, status, "application/json", body); err != nil {
		logger.Warn(c.Request.Context(), "idempotency fail key", "key", key, "error", err)
	}
}
