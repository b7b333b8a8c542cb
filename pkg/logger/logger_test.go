package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "gestaopro/internal/core/context"
)

func TestWithContext_AddsTraceAndUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := appctx.WithTrace(context.Background(), &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "u-1"})

	l.WithContext(ctx).Infow("sale created", "number", "VND-2026-00001")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "t-1", fields["trace_id"])
		assert.Equal(t, "r-1", fields["request_id"])
		assert.Equal(t, "u-1", fields["user_id"])
		assert.Equal(t, "VND-2026-00001", fields["number"])
	}
}

func TestFromContext_UsesAttachedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), l.WithComponent("sales"))
	Debug(ctx, "checking stock")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "sales", entries[0].ContextMap()["component"])
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	core, logs := observer.New(zapcore.WarnLevel)
	SetDefault(&Logger{zap.New(core).Sugar()})

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u-9"})
	Info(ctx, "below level")
	Warn(ctx, "cache invalidation failed", "error", "boom")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "cache invalidation failed", entries[0].Message)
		assert.Equal(t, "u-9", entries[0].ContextMap()["user_id"])
		assert.NotContains(t, entries[0].ContextMap(), "trace_id")
	}
}

func TestWithContext_EmptyContextKeepsLogger(t *testing.T) {
	l := NewNop()
	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	if assert.NoError(t, err) {
		assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
		assert.Same(t, l, Default())
	}
}
