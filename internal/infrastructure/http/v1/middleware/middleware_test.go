package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/infrastructure/http/v1/middleware"
	"gestaopro/pkg/logger"
)

func newEngine(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.SetDefault(logger.NewNop())

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Trace(), middleware.Logger(logger.NewNop()), middleware.ErrorHandler())
	r.GET("/x", handler)
	return r
}

func serve(t *testing.T, r http.Handler, header ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("p1", "Soap", "3", "1"))
		c.Abort()
	})

	rec, body := serve(t, r)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "1", details["available"])
}

func TestErrorHandler_HidesUnknownErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
		c.Abort()
	})

	rec, body := serve(t, r, middleware.HeaderRequestID, "req-42")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Equal(t, "req-42", body["details"].(map[string]any)["request_id"])
}

func TestRecovery_PanicBecomesJSON(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		panic("boom")
	})

	rec, body := serve(t, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestTrace_PropagatesAndGeneratesIDs(t *testing.T) {
	var seen string
	r := newEngine(func(c *gin.Context) {
		seen = appctx.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	rec, _ := serve(t, r, middleware.HeaderRequestID, "abc")
	assert.Equal(t, "abc", rec.Header().Get(middleware.HeaderRequestID))
	assert.Equal(t, "abc", seen)

	rec, _ = serve(t, r)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderTraceID))
}
