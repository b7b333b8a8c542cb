package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
)

func TestRequireOwnerID(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		_, err := RequireOwnerID(context.Background())
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	})

	t.Run("malformed id", func(t *testing.T) {
		ctx := WithUser(context.Background(), &UserContext{UserID: "not-a-uuid"})
		_, err := RequireOwnerID(ctx)
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	})

	t.Run("owner from context", func(t *testing.T) {
		owner := id.New()
		got, err := RequireOwnerID(WithOwner(context.Background(), owner))
		require.NoError(t, err)
		assert.Equal(t, owner, got)
	})
}

func TestNewTraceContext_GeneratesMissingIDs(t *testing.T) {
	tc := NewTraceContext("", "req-1")
	assert.NotEmpty(t, tc.TraceID)
	assert.Equal(t, "req-1", tc.RequestID)
}
