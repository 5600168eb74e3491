package contracts

import (
	"context"
	"time"
)

// HistoryFetcher returns the daily price history of a symbol over a period
// such as "5y", "2y" or "5d". It fails with ErrNotFound when no data exists.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol, period string) (*PriceSeries, error)
}

// BenchmarkResolver maps index aliases (NIFTY, BANKNIFTY, ...) to their
// canonical exchange symbol
type BenchmarkResolver interface {
	ResolveBenchmark(symbol string) (string, bool)
}

// ScalarCache stores single float values with an explicit clock
type ScalarCache interface {
	Get(ctx context.Context, key string, now time.Time) (float64, bool)
	Set(ctx context.Context, key string, value float64, now time.Time)
}
