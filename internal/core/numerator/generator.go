// Package numerator provides the contract for human-readable document numbers.
// Implementations live in the storage layer.
package numerator

import (
	"context"
	"fmt"
	"time"
)

// Generator generates sequential document numbers.
// Sequences are partitioned by the owner found in ctx.
type Generator interface {
	// GetNextNumber generates the next number, e.g. VND-2026-00001.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the current sequence value (used by imports).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// SequenceKey builds the storage key for a sequence.
func SequenceKey(owner string, cfg Config, period time.Time) string {
	var key string
	switch cfg.ResetPeriod {
	case ResetMonthly:
		key = fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case ResetYearly:
		key = fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		key = cfg.Prefix
	}
	if owner == "" {
		return key
	}
	return owner + ":" + key
}

// Format renders a sequence value using cfg.
func Format(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}
