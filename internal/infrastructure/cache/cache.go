// Package cache provides the report cache with tag based invalidation.
//
// Each owner has a generation counter per tag. Entry keys embed the current
// generations of their tags, so bumping a counter makes every dependent entry
// unreachable without scanning for it. Stale entries expire by TTL.
//
// Get hands out the versioned key it looked up and Set writes exactly there,
// so a value computed across an invalidation lands on an unreachable key.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/reports"
)

// DefaultTTL bounds how long an entry may outlive its last invalidation.
const DefaultTTL = 10 * time.Minute

// ReportCache is the cache used by the dashboard and by write paths.
type ReportCache interface {
	reports.Cache
	domain.Invalidator
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, []string, any) (reports.CacheSlot, bool, error) {
	return "", false, nil
}
func (Noop) Set(context.Context, reports.CacheSlot, any) error { return nil }
func (Noop) Invalidate(context.Context, ...string) error       { return nil }

// entryKey builds the versioned key of an entry from the tag generations.
func entryKey(prefix, owner, key string, gens []int64) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(":")
	b.WriteString(owner)
	b.WriteString(":")
	b.WriteString(key)
	for _, g := range gens {
		b.WriteString(":")
		b.WriteString(strconv.FormatInt(g, 10))
	}
	return b.String()
}

func tagKey(prefix, owner, tag string) string {
	return fmt.Sprintf("%s:%s:tag:%s", prefix, owner, tag)
}

func ownerKey(ctx context.Context) (string, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return "", err
	}
	return ownerID.String(), nil
}

// checkSlot rejects slots of another owner or another cache.
func checkSlot(ctx context.Context, prefix string, slot reports.CacheSlot) error {
	owner, err := ownerKey(ctx)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(string(slot), prefix+":"+owner+":") {
		return fmt.Errorf("cache slot %q does not belong to this owner", slot)
	}
	return nil
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory is an in-process ReportCache for single instance deployments.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	gens    map[string]int64
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an in-process cache. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		gens:    make(map[string]int64),
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

const memoryPrefix = "mem"

// versionedKey must be called with at least the read lock held.
func (m *Memory) versionedKey(owner, key string, tags []string) string {
	gens := make([]int64, len(tags))
	for i, tag := range tags {
		gens[i] = m.gens[tagKey(memoryPrefix, owner, tag)]
	}
	return entryKey(memoryPrefix, owner, key, gens)
}

func (m *Memory) Get(ctx context.Context, key string, tags []string, dst any) (reports.CacheSlot, bool, error) {
	owner, err := ownerKey(ctx)
	if err != nil {
		return "", false, err
	}
	m.mu.RLock()
	full := m.versionedKey(owner, key, tags)
	e, ok := m.entries[full]
	m.mu.RUnlock()

	slot := reports.CacheSlot(full)
	if !ok || m.now().After(e.expiresAt) {
		return slot, false, nil
	}
	if err := json.Unmarshal(e.payload, dst); err != nil {
		return slot, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return slot, true, nil
}

func (m *Memory) Set(ctx context.Context, slot reports.CacheSlot, value any) error {
	if err := checkSlot(ctx, memoryPrefix, slot); err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[string(slot)] = memoryEntry{payload: payload, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, tags ...string) error {
	owner, err := ownerKey(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tag := range tags {
		m.gens[tagKey(memoryPrefix, owner, tag)]++
	}
	m.evictExpired()
	return nil
}

// evictExpired drops expired entries. Caller holds the write lock.
func (m *Memory) evictExpired() {
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

var (
	_ ReportCache = Noop{}
	_ ReportCache = (*Memory)(nil)
)
