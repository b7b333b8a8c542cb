package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
)

func TestMemoryGenerator_SequencePerOwner(t *testing.T) {
	gen := NewMemoryGenerator()
	cfg := DefaultConfig("VND")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ownerA := appctx.WithOwner(context.Background(), id.New())
	ownerB := appctx.WithOwner(context.Background(), id.New())

	n1, err := gen.GetNextNumber(ownerA, cfg, nil, period)
	require.NoError(t, err)
	n2, _ := gen.GetNextNumber(ownerA, cfg, nil, period)
	n3, _ := gen.GetNextNumber(ownerB, cfg, nil, period)

	assert.Equal(t, "VND-2026-00001", n1)
	assert.Equal(t, "VND-2026-00002", n2)
	assert.Equal(t, "VND-2026-00001", n3)
}

func TestMemoryGenerator_ResetsByYear(t *testing.T) {
	gen := NewMemoryGenerator()
	cfg := DefaultConfig("VND")
	ctx := appctx.WithOwner(context.Background(), id.New())

	_, _ = gen.GetNextNumber(ctx, cfg, nil, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	next, _ := gen.GetNextNumber(ctx, cfg, nil, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "VND-2026-00001", next)
}

func TestSetNextNumber(t *testing.T) {
	gen := NewMemoryGenerator()
	cfg := Config{Prefix: "EXP", PadWidth: 3, ResetPeriod: "never"}
	ctx := context.Background()

	require.NoError(t, gen.SetNextNumber(ctx, cfg, time.Now(), 41))
	next, _ := gen.GetNextNumber(ctx, cfg, nil, time.Now())
	assert.Equal(t, "EXP-042", next)
}

func TestSequenceKey(t *testing.T) {
	period := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "o:VND_2026", SequenceKey("o", DefaultConfig("VND"), period))
	assert.Equal(t, "VND_2026_07", SequenceKey("", Config{Prefix: "VND", ResetPeriod: "month"}, period))
	assert.Equal(t, "VND", SequenceKey("", Config{Prefix: "VND"}, period))
}
