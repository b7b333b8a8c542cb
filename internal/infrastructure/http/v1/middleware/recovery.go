// Package middleware provides HTTP middleware components.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"gestaopro/internal/core/apperror"
	"gestaopro/pkg/logger"
)

// Recovery turns a handler panic into a 500 response in the ErrorHandler format.
// The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if clientGone(rec) {
				logger.Warn(c.Request.Context(), "client closed connection",
					"method", c.Request.Method,
					"route", c.FullPath(),
				)
				c.Abort()
				return
			}

			logger.Error(c.Request.Context(), "panic recovered",
				"method", c.Request.Method,
				"route", c.FullPath(),
				"error", rec,
				"stack", string(debug.Stack()),
			)

			// The panic skipped ErrorHandler, so the body is rendered here.
			_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", rec)))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    apperror.CodeInternal,
				"message": "Internal server error",
				"details": map[string]any{"request_id": c.GetString("request_id")},
			})
		}()
		c.Next()
	}
}

// clientGone reports a write to a connection the client already closed.
func clientGone(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, http.ErrAbortHandler)
}
