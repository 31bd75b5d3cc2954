package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption overrides part of the Redis connection settings.
type RedisOption func(*redisSettings)

type redisSettings struct {
	host     string
	port     int
	password string
	db       int
	prefix   string
}

func WithRedisHost(host string) RedisOption { return func(s *redisSettings) { s.host = host } }

func WithRedisPort(port int) RedisOption { return func(s *redisSettings) { s.port = port } }

func WithRedisPassword(pw string) RedisOption { return func(s *redisSettings) { s.password = pw } }

func WithRedisDB(db int) RedisOption { return func(s *redisSettings) { s.db = db } }

// RedisCache is the shared Service backed by Redis. Keys are namespaced under
// a fixed prefix so the cache can share a database with the job queue.
type RedisCache struct {
	cli    *redis.Client
	prefix string
}

// NewRedisCache connects and pings; a dead Redis fails fast so the caller can
// fall back to the in-process cache.
func NewRedisCache(opts ...RedisOption) (*RedisCache, error) {
	s := &redisSettings{host: "localhost", port: 6379, prefix: "yieldpull"}
	for _, opt := range opts {
		opt(s)
	}

	cli := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", s.host, s.port),
		Password: s.password,
		DB:       s.db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{cli: cli, prefix: s.prefix}, nil
}

// Client exposes the underlying connection for the queue and log publisher.
func (c *RedisCache) Client() *redis.Client { return c.cli }

func (c *RedisCache) Close() error { return c.cli.Close() }

func (c *RedisCache) key(k string) string { return c.prefix + ":" + k }

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cli.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.cli.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.cli.Unlink(ctx, full...).Err()
}

// DeleteByPattern walks matching keys with SCAN rather than KEYS so a large
// keyspace cannot stall the server during invalidation.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.cli.Scan(ctx, 0, c.key(pattern), 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.cli.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.cli.Unlink(ctx, batch...).Err()
	}
	return nil
}

var _ Service = (*RedisCache)(nil)
