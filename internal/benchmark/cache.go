// Package benchmark looks up the benchmark volatility index (India VIX)
// behind a TTL cache with an explicit clock.
package benchmark

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/redis"
)

// DefaultTTL is how long a looked-up value stays fresh
const DefaultTTL = 24 * time.Hour

type cachedValue struct {
	Value    float64   `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

func (v cachedValue) fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(v.StoredAt) < ttl
}

// MemoryCache is a process-local ScalarCache
type MemoryCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedValue
}

var _ contracts.ScalarCache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache; ttl <= 0 means DefaultTTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{ttl: ttl, entries: make(map[string]cachedValue)}
}

// Get returns the value when it was stored less than ttl before now
func (c *MemoryCache) Get(_ context.Context, key string, now time.Time) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	if !ok || !v.fresh(now, c.ttl) {
		return 0, false
	}
	return v.Value, true
}

// Set stores value as of now
func (c *MemoryCache) Set(_ context.Context, key string, value float64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedValue{Value: value, StoredAt: now}
}

// jsonStore is the slice of redis.Cache used by RedisCache
type jsonStore interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RedisCache is a ScalarCache shared by every process behind one Redis
type RedisCache struct {
	cache  jsonStore
	ttl    time.Duration
	logger *logger.Logger
}

var (
	_ contracts.ScalarCache = (*RedisCache)(nil)
	_ jsonStore             = (*redis.Cache)(nil)
)

// NewRedisCache wraps a Redis cache helper; ttl <= 0 means DefaultTTL
func NewRedisCache(cache jsonStore, ttl time.Duration, log *logger.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisCache{cache: cache, ttl: ttl, logger: log.WithField("module", "benchmark")}
}

// Get reads the stored value and checks freshness against now.
// Read errors count as a miss.
func (c *RedisCache) Get(ctx context.Context, key string, now time.Time) (float64, bool) {
	var v cachedValue
	found, err := c.cache.Get(ctx, redis.BenchmarkKey(key), &v)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Debug("Benchmark cache read failed")
		return 0, false
	}
	if !found || !v.fresh(now, c.ttl) {
		return 0, false
	}
	return v.Value, true
}

// Set stores value as of now; Redis expires it after ttl as well
func (c *RedisCache) Set(ctx context.Context, key string, value float64, now time.Time) {
	if err := c.cache.Set(ctx, redis.BenchmarkKey(key), cachedValue{Value: value, StoredAt: now}, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Debug("Benchmark cache write failed")
	}
}
