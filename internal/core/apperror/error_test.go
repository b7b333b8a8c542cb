package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientStock_NamesProductAndAvailable(t *testing.T) {
	err := NewInsufficientStock("p-1", "Coffee", "3", "2")

	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Contains(t, err.Message, "Coffee")
	assert.Contains(t, err.Message, "2")
	assert.Equal(t, "2", err.Details["available"])
}

func TestAsAppError_ThroughWrapping(t *testing.T) {
	base := NewNotFound("product", "42")
	wrapped := fmt.Errorf("create sale: %w", base)

	got, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Same(t, base, got)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsAppError(errors.New("boom")))
}

func TestDuplicate_Message(t *testing.T) {
	err := NewDuplicate("category", "name", "Drinks")
	assert.Equal(t, "category already exists", err.Message)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
}

func TestWithCause_Unwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternal(cause)
	assert.ErrorIs(t, err, cause)
}
