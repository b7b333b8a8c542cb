package numerator

import (
	"context"
	"sync"
	"time"

	appctx "gestaopro/internal/core/context"
)

// MemoryGenerator keeps sequences in process memory.
// Used by the in-memory backend and in tests.
type MemoryGenerator struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMemoryGenerator creates an empty generator.
func NewMemoryGenerator() *MemoryGenerator {
	return &MemoryGenerator{values: make(map[string]int64)}
}

// GetNextNumber implements Generator.
func (g *MemoryGenerator) GetNextNumber(ctx context.Context, cfg Config, _ *Options, period time.Time) (string, error) {
	key := SequenceKey(appctx.GetUserID(ctx), cfg, period)

	g.mu.Lock()
	g.values[key]++
	next := g.values[key]
	g.mu.Unlock()

	return Format(cfg, period, next), nil
}

// SetNextNumber implements Generator.
func (g *MemoryGenerator) SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error {
	key := SequenceKey(appctx.GetUserID(ctx), cfg, period)
	g.mu.Lock()
	g.values[key] = value
	g.mu.Unlock()
	return nil
}

var _ Generator = (*MemoryGenerator)(nil)
