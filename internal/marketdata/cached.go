package marketdata

import (
	"context"
	"time"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/redis"
)

// CachedFetcher is a read-through Redis cache in front of another fetcher
type CachedFetcher struct {
	next   contracts.HistoryFetcher
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

var _ contracts.HistoryFetcher = (*CachedFetcher)(nil)

// NewCachedFetcher wraps next; a disabled Redis client makes it a pass-through
func NewCachedFetcher(next contracts.HistoryFetcher, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedFetcher {
	if ttl <= 0 {
		ttl = redis.TTLHistory
	}
	return &CachedFetcher{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithField("module", "history_cache"),
	}
}

// FetchHistory serves from cache or fetches and stores. Cache errors never
// fail the request.
func (f *CachedFetcher) FetchHistory(ctx context.Context, symbol, period string) (*contracts.PriceSeries, error) {
	key := redis.HistoryKey(symbol, period)

	var cached contracts.PriceSeries
	found, err := f.cache.Get(ctx, key, &cached)
	if err != nil {
		f.logger.WithError(err).WithField("key", key).Warn("History cache read failed")
	}
	if found && cached.Len() > 0 {
		return &cached, nil
	}

	series, err := f.next.FetchHistory(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, series, f.ttl); err != nil {
		f.logger.WithError(err).WithField("key", key).Warn("History cache write failed")
	}
	return series, nil
}
