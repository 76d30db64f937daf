package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookworm/bookworm-web/internal/config"
)

// RedisCache is a Store backed by Redis. Values are JSON; each tag is a Redis set
// of the keys cached under it.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache creates a RedisCache on an existing client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, raw, ttl)
	for _, tag := range tags {
		tagKey := config.CacheKey.TagKey(tag)
		pipe.SAdd(ctx, tagKey, key)
		// The set only needs to outlive its newest member.
		if ttl > 0 {
			pipe.Expire(ctx, tagKey, ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Stamp(ctx context.Context, tags ...string) (Stamp, error) {
	st := Stamp{Tags: tags}
	if len(tags) == 0 {
		return st, nil
	}
	versions, err := c.versions(ctx, c.rdb, tags)
	if err != nil {
		return Stamp{}, err
	}
	st.versions = versions
	return st, nil
}

func (c *RedisCache) SetIfUnchanged(ctx context.Context, stamp Stamp, key string, value any, ttl time.Duration) (bool, error) {
	if len(stamp.Tags) == 0 {
		return true, c.Set(ctx, key, value, ttl)
	}
	if len(stamp.versions) != len(stamp.Tags) {
		return false, errors.New("stamp was not taken by this cache")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}

	watched := make([]string, len(stamp.Tags))
	for i, tag := range stamp.Tags {
		watched[i] = config.CacheKey.TagVersionKey(tag)
	}

	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.versions(ctx, tx, stamp.Tags)
		if err != nil {
			return err
		}
		for i := range current {
			if current[i] != stamp.versions[i] {
				return nil
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, ttl)
			for _, tag := range stamp.Tags {
				tagKey := config.CacheKey.TagKey(tag)
				pipe.SAdd(ctx, tagKey, key)
				if ttl > 0 {
					pipe.Expire(ctx, tagKey, ttl)
				}
			}
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, watched...)

	if errors.Is(err, redis.TxFailedErr) {
		// A tag was invalidated between the check and EXEC.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache %s: %w", key, err)
	}
	return stored, nil
}

// versions reads the invalidation counters of tags. A tag never invalidated reads "".
func (c *RedisCache) versions(ctx context.Context, cmd redis.StringCmdable, tags []string) ([]string, error) {
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = config.CacheKey.TagVersionKey(tag)
	}
	vals, err := cmd.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("tag versions: %w", err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = s
		}
	}
	return out, nil
}

// Invalidate bumps each tag's version before reading its members, so a concurrent
// SetIfUnchanged either lands before the read (and is deleted) or is refused.
func (c *RedisCache) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tagKey := config.CacheKey.TagKey(tag)

		if err := c.rdb.Incr(ctx, config.CacheKey.TagVersionKey(tag)).Err(); err != nil {
			return fmt.Errorf("bump %s: %w", tag, err)
		}

		keys, err := c.rdb.SMembers(ctx, tagKey).Result()
		if err != nil {
			return fmt.Errorf("members of %s: %w", tag, err)
		}

		pipe := c.rdb.Pipeline()
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, tagKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("invalidate %s: %w", tag, err)
		}
	}
	return nil
}
