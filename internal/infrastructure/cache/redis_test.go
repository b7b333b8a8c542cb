package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisWithClient(client, "test", ttl)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedis_GetSetInvalidate(t *testing.T) {
	c, _ := newTestRedis(t, time.Minute)
	ctx := appctx.WithOwner(context.Background(), id.New())
	require.NoError(t, c.Ping(ctx))

	var got payload
	slot, hit, err := c.Get(ctx, "dashboard:2026-05", tags, &got)
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, c.Set(ctx, slot, payload{Total: "10"}))

	_, hit, err = c.Get(ctx, "dashboard:2026-05", tags, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "10", got.Total)

	require.NoError(t, c.Invalidate(ctx, domain.TagProducts))
	_, hit, err = c.Get(ctx, "dashboard:2026-05", tags, &got)
	require.NoError(t, err)
	assert.True(t, hit, "unrelated tag")

	require.NoError(t, c.Invalidate(ctx, domain.TagSales, domain.TagExpenses))
	_, hit, err = c.Get(ctx, "dashboard:2026-05", tags, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedis_InvalidateDuringBuildLeavesStaleEntryUnreachable(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	ctx := appctx.WithOwner(context.Background(), id.New())

	var got payload
	slot, _, err := c.Get(ctx, "dashboard:2026-05", tags, &got)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, domain.TagExpenses))
	require.NoError(t, c.Set(ctx, slot, payload{Total: "stale"}))
	assert.True(t, mr.Exists(string(slot)))

	_, hit, err := c.Get(ctx, "dashboard:2026-05", tags, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedis_EntriesExpire(t *testing.T) {
	c, mr := newTestRedis(t, 30*time.Second)
	ctx := appctx.WithOwner(context.Background(), id.New())

	var got payload
	slot, _, err := c.Get(ctx, "k", nil, &got)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, slot, payload{Total: "1"}))
	assert.Equal(t, 30*time.Second, mr.TTL(string(slot)))

	mr.FastForward(time.Minute)
	_, hit, err := c.Get(ctx, "k", nil, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedis_OwnersAreIsolated(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	a := appctx.WithOwner(context.Background(), id.New())
	b := appctx.WithOwner(context.Background(), id.New())

	slot, _, err := c.Get(a, "k", tags, &payload{})
	require.NoError(t, err)
	require.NoError(t, c.Set(a, slot, payload{Total: "1"}))
	assert.Error(t, c.Set(b, slot, payload{Total: "2"}))

	var got payload
	_, hit, err := c.Get(b, "k", tags, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Invalidate(b, domain.TagSales))
	owner, _ := appctx.RequireOwnerID(b)
	gen, err := mr.Get(tagKey("test", owner.String(), domain.TagSales))
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	_, hit, err = c.Get(a, "k", tags, &got)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestRedis_CorruptGenerationIsAnError(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	owner := id.New()
	ctx := appctx.WithOwner(context.Background(), owner)

	require.NoError(t, mr.Set(tagKey("test", owner.String(), domain.TagSales), "not-a-number"))
	_, _, err := c.Get(ctx, "k", tags, &payload{})
	assert.Error(t, err)
}

func TestRedis_ServerDown(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	ctx := appctx.WithOwner(context.Background(), id.New())
	mr.Close()

	assert.Error(t, c.Ping(ctx))
	_, _, err := c.Get(ctx, "k", tags, &payload{})
	assert.Error(t, err)
}
