// Package numerator provides the PostgreSQL implementation of sale numbering.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	appctx "gestaopro/internal/core/context"
	corenumerator "gestaopro/internal/core/numerator"
)

// Querier is the part of a pgx connection or transaction the service uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierSource resolves the querier for ctx, so strict numbers are taken
// inside the caller's transaction and roll back with it.
type QuerierSource interface {
	GetQuerier(ctx context.Context) Querier
}

// QuerierFunc adapts a function to QuerierSource.
type QuerierFunc func(ctx context.Context) Querier

func (f QuerierFunc) GetQuerier(ctx context.Context) Querier { return f(ctx) }

type cachedRange struct {
	current int64
	max     int64
}

// Service allocates numbers from sys_sequences, one row per owner and key.
type Service struct {
	source QuerierSource

	mu     sync.Mutex
	ranges map[string]*cachedRange
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator backed by source.
func New(source QuerierSource) *Service {
	return &Service{
		source: source,
		ranges: make(map[string]*cachedRange),
	}
}

// GetNextNumber returns the next formatted number, e.g. VND-2026-00001.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, opts *corenumerator.Options, period time.Time) (string, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return "", err
	}
	if opts == nil {
		opts = corenumerator.DefaultOptions()
	}
	key := corenumerator.SequenceKey("", cfg, period)

	var num int64
	switch opts.Strategy {
	case corenumerator.StrategyCached:
		num, err = s.nextCached(ctx, ownerID.String(), key, opts.RangeSize)
	default:
		num, err = s.reserve(ctx, ownerID.String(), key, 1)
	}
	if err != nil {
		return "", err
	}
	return corenumerator.Format(cfg, period, num), nil
}

// reserve adds n to the sequence and returns the new last value.
func (s *Service) reserve(ctx context.Context, owner, key string, n int64) (int64, error) {
	var last int64
	err := s.source.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (owner_id, key, last_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, key) DO UPDATE SET last_value = sys_sequences.last_value + $3
		RETURNING last_value
	`, owner, key, n).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("next value of %s: %w", key, err)
	}
	return last, nil
}

// nextCached hands out numbers from an in-memory range, reserving a new one when exhausted.
func (s *Service) nextCached(ctx context.Context, owner, key string, size int64) (int64, error) {
	if size <= 0 {
		size = 50
	}
	cacheKey := owner + ":" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	rng, ok := s.ranges[cacheKey]
	if !ok {
		rng = &cachedRange{}
		s.ranges[cacheKey] = rng
	}
	if rng.current >= rng.max {
		last, err := s.reserve(ctx, owner, key, size)
		if err != nil {
			return 0, err
		}
		rng.current = last - size
		rng.max = last
	}
	rng.current++
	return rng.current, nil
}

// SetNextNumber overwrites the sequence value and drops any cached range.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	key := corenumerator.SequenceKey("", cfg, period)

	var result int64
	err = s.source.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (owner_id, key, last_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, key) DO UPDATE SET last_value = $3
		RETURNING last_value
	`, ownerID.String(), key, value).Scan(&result)

	s.mu.Lock()
	delete(s.ranges, ownerID.String()+":"+key)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("set sequence %s: %w", key, err)
	}
	return nil
}
