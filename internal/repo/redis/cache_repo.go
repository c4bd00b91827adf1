package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	cachePrefix    = "cache:"
	cacheTagPrefix = "cache_tag:"

	defaultCacheTTL = time.Minute
)

// CacheRepo is a short-TTL byte cache with tag based invalidation. Each
// entry may carry tags; invalidating a tag drops every entry that carries
// it. Tag sets outlive their entries slightly, which only costs a few
// dangling key names on the next invalidation.
type CacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewCacheRepo(client *goredis.Client, ttl time.Duration) *CacheRepo {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CacheRepo{client: client, ttl: ttl}
}

// Get reports a miss on any redis failure; callers fall through to the
// source of truth.
func (r *CacheRepo) Get(ctx context.Context, key string) ([]byte, bool) {
	if r.client == nil || key == "" {
		return nil, false
	}

	value, err := r.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		return nil, false
	}

	return value, true
}

// Set is best-effort and never reports failure.
func (r *CacheRepo) Set(ctx context.Context, key string, value []byte, tags ...string) {
	if r.client == nil || key == "" {
		return
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, cacheKey(key), value, r.ttl)
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		pipe.SAdd(ctx, tagKey(tag), cacheKey(key))
		pipe.Expire(ctx, tagKey(tag), r.ttl*2)
	}

	_, _ = pipe.Exec(ctx)
}

func (r *CacheRepo) InvalidateTags(ctx context.Context, tags ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	var firstErr error
	for _, tag := range tags {
		if tag == "" {
			continue
		}

		members, err := r.client.SMembers(ctx, tagKey(tag)).Result()
		if err != nil && !errors.Is(err, goredis.Nil) {
			if firstErr == nil {
				firstErr = fmt.Errorf("read tag members %q: %w", tag, err)
			}
			continue
		}

		keys := append(members, tagKey(tag))
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("delete tagged keys %q: %w", tag, err)
			}
		}
	}

	return firstErr
}

func cacheKey(key string) string {
	return cachePrefix + key
}

func tagKey(tag string) string {
	return cacheTagPrefix + tag
}
