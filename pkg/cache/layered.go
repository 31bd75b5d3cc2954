package cache

import (
	"context"
	"time"
)

// LayeredCache fronts Redis with the in-process cache. Writes go through to
// both layers; reads fall back to Redis and refill the local layer.
type LayeredCache struct {
	local  *MemoryCache
	remote *RedisCache
}

func NewLayeredCache(remote *RedisCache) *LayeredCache {
	return &LayeredCache{local: NewMemoryCache(), remote: remote}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := lc.remote.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return lc.local.Set(ctx, key, value, ttl)
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest any) error {
	if err := lc.local.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.remote.Get(ctx, key, dest); err != nil {
		return err
	}
	// refill with a short TTL; Redis stays the source of truth
	_ = lc.local.Set(ctx, key, dest, time.Minute)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.local.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	_ = lc.local.DeleteByPattern(ctx, pattern)
	return lc.remote.DeleteByPattern(ctx, pattern)
}

// Close releases both layers.
func (lc *LayeredCache) Close() error {
	_ = lc.local.Close()
	return lc.remote.Close()
}

var _ Service = (*LayeredCache)(nil)
