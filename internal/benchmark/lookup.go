package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/logger"
)

// DefaultSymbol is the India VIX index
const DefaultSymbol = "^INDIAVIX"

// lookupPeriod is long enough to contain at least one trading day
const lookupPeriod = "5d"

// Lookup returns the latest close of the benchmark index.
// Failures yield nil: the value is informational only.
type Lookup struct {
	fetcher contracts.HistoryFetcher
	cache   contracts.ScalarCache
	symbol  string
	logger  *logger.Logger
	now     func() time.Time
}

// NewLookup creates a lookup for symbol
func NewLookup(fetcher contracts.HistoryFetcher, cache contracts.ScalarCache, symbol string, log *logger.Logger) *Lookup {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Lookup{
		fetcher: fetcher,
		cache:   cache,
		symbol:  symbol,
		logger:  log.WithField("module", "benchmark"),
		now:     time.Now,
	}
}

// Symbol returns the benchmark symbol
func (l *Lookup) Symbol() string {
	return l.symbol
}

// Value returns the cached value, fetching it when stale
func (l *Lookup) Value(ctx context.Context) *float64 {
	if v, ok := l.cache.Get(ctx, l.symbol, l.now()); ok {
		return &v
	}

	v, err := l.fetch(ctx)
	if err != nil {
		l.logger.WithError(err).WithField("symbol", l.symbol).Warn("Benchmark volatility unavailable")
		return nil
	}
	return &v
}

// Refresh fetches and stores the value regardless of freshness
func (l *Lookup) Refresh(ctx context.Context) error {
	v, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	l.logger.WithFields(map[string]interface{}{
		"symbol": l.symbol,
		"value":  v,
	}).Info("Benchmark volatility refreshed")
	return nil
}

func (l *Lookup) fetch(ctx context.Context) (float64, error) {
	series, err := l.fetcher.FetchHistory(ctx, l.symbol, lookupPeriod)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", l.symbol, err)
	}
	v, err := series.LastClose()
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", l.symbol, err)
	}
	l.cache.Set(ctx, l.symbol, v, l.now())
	return v, nil
}
