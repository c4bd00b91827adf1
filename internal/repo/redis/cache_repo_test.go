package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*CacheRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheRepo(client, ttl), mr
}

func TestCacheSetGetRoundtrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "threads:list:language=&category=", []byte(`[{"id":1}]`), "threads")

	got, ok := cache.Get(ctx, "threads:list:language=&category=")
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if !bytes.Equal(got, []byte(`[{"id":1}]`)) {
		t.Fatalf("unexpected cached value %q", got)
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	if _, ok := cache.Get(context.Background(), "nope"); ok {
		t.Fatalf("expected a miss for an unknown key")
	}
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"))
	mr.FastForward(2 * time.Minute)

	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatalf("expected the entry to expire")
	}
}

func TestInvalidateTagsDropsTaggedEntries(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "list:a", []byte("a"), "threads")
	cache.Set(ctx, "list:b", []byte("b"), "threads", "thread:1")
	cache.Set(ctx, "other", []byte("c"), "skills")

	if err := cache.InvalidateTags(ctx, "threads"); err != nil {
		t.Fatalf("InvalidateTags: %v", err)
	}

	if _, ok := cache.Get(ctx, "list:a"); ok {
		t.Fatalf("list:a survived invalidation")
	}
	if _, ok := cache.Get(ctx, "list:b"); ok {
		t.Fatalf("list:b survived invalidation")
	}
	if _, ok := cache.Get(ctx, "other"); !ok {
		t.Fatalf("entry with a different tag was dropped")
	}
}

func TestInvalidateUnknownTagIsNoOp(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	if err := cache.InvalidateTags(context.Background(), "ghost"); err != nil {
		t.Fatalf("InvalidateTags on unknown tag: %v", err)
	}
}
