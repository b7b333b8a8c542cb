package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"gestaopro/internal/domain/reports"
)

// RedisOptions configures the Redis report cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Redis is a ReportCache shared by every API instance.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects a Redis report cache.
func NewRedis(opts RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisWithClient(client, opts.Prefix, opts.TTL)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "gestaopro"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}

// versionedKey reads the tag generations in one round trip.
func (c *Redis) versionedKey(ctx context.Context, owner, key string, tags []string) (string, error) {
	if len(tags) == 0 {
		return entryKey(c.prefix, owner, key, nil), nil
	}
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = tagKey(c.prefix, owner, tag)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return "", fmt.Errorf("read tag generations: %w", err)
	}
	gens := make([]int64, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		g, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", fmt.Errorf("parse generation of %s: %w", keys[i], err)
		}
		gens[i] = g
	}
	return entryKey(c.prefix, owner, key, gens), nil
}

func (c *Redis) Get(ctx context.Context, key string, tags []string, dst any) (reports.CacheSlot, bool, error) {
	owner, err := ownerKey(ctx)
	if err != nil {
		return "", false, err
	}
	full, err := c.versionedKey(ctx, owner, key, tags)
	if err != nil {
		return "", false, err
	}
	slot := reports.CacheSlot(full)

	val, err := c.client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return slot, false, nil
	}
	if err != nil {
		return "", false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return slot, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return slot, true, nil
}

// Set writes under the generations captured by Get. No tag is re-read here.
func (c *Redis) Set(ctx context.Context, slot reports.CacheSlot, value any) error {
	if err := checkSlot(ctx, c.prefix, slot); err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	return c.client.Set(ctx, string(slot), payload, c.ttl).Err()
}

// Invalidate bumps the owner's generation of every tag.
func (c *Redis) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	owner, err := ownerKey(ctx)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, tag := range tags {
			pipe.Incr(ctx, tagKey(c.prefix, owner, tag))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bump tag generations: %w", err)
	}
	return nil
}

var _ ReportCache = (*Redis)(nil)
