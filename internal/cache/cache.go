// Package cache stores rendered pages in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evcraddock/staylist/internal/metrics"
)

// keyPrefix namespaces every key this package writes.
const keyPrefix = "staylist:page:"

// DetailKey is the cache key for a property's rendered detail page.
func DetailKey(name string) string {
	return "detail:" + name
}

// Pages is a Redis-backed cache of rendered HTML.
type Pages struct {
	c *redis.Client
}

// New connects to Redis at addr. The connection is lazy; use Ping to check it.
func New(addr, password string, db int) *Pages {
	return &Pages{c: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

// Ping checks the Redis connection.
func (p *Pages) Ping(ctx context.Context) error {
	if err := p.c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Get returns the cached page for key. ok is false on a miss.
func (p *Pages) Get(ctx context.Context, key string) (page []byte, ok bool, err error) {
	v, err := p.c.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache("miss")
		return nil, false, nil
	}
	if err != nil {
		metrics.ObserveCache("error")
		return nil, false, fmt.Errorf("reading cached page %q: %w", key, err)
	}
	metrics.ObserveCache("hit")
	return v, true, nil
}

// Set stores page under key for ttl. A zero ttl keeps it until deleted.
func (p *Pages) Set(ctx context.Context, key string, page []byte, ttl time.Duration) error {
	metrics.ObserveCache("set")
	if err := p.c.Set(ctx, keyPrefix+key, page, ttl).Err(); err != nil {
		return fmt.Errorf("caching page %q: %w", key, err)
	}
	return nil
}

// Del removes key.
func (p *Pages) Del(ctx context.Context, key string) error {
	metrics.ObserveCache("del")
	if err := p.c.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("deleting cached page %q: %w", key, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (p *Pages) Close() error {
	return p.c.Close()
}
