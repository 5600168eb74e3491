package benchmark

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/config"
	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/redis"
)

type fakeFetcher struct {
	closes []float64
	err    error
	calls  int
	period string
}

func (f *fakeFetcher) FetchHistory(_ context.Context, symbol, period string) (*contracts.PriceSeries, error) {
	f.calls++
	f.period = period
	if f.err != nil {
		return nil, f.err
	}
	s := &contracts.PriceSeries{Symbol: symbol, Resolved: symbol}
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for i, c := range f.closes {
		s.Bars = append(s.Bars, contracts.PriceBar{Date: day.AddDate(0, 0, i), Close: c})
	}
	return s, nil
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)
	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	_, ok := c.Get(ctx, "k", t0)
	assert.False(t, ok)

	c.Set(ctx, "k", 14.2, t0)
	v, ok := c.Get(ctx, "k", t0.Add(59*time.Minute))
	require.True(t, ok)
	assert.Equal(t, 14.2, v)

	_, ok = c.Get(ctx, "k", t0.Add(time.Hour))
	assert.False(t, ok, "expired exactly at ttl")

	assert.Equal(t, DefaultTTL, NewMemoryCache(0).ttl)
}

func TestRedisCache_DisabledAlwaysMisses(t *testing.T) {
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	c := NewRedisCache(redis.NewCache(client, "test"), 0, logger.Nop())

	ctx := context.Background()
	now := time.Now()
	c.Set(ctx, "k", 1, now)
	_, ok := c.Get(ctx, "k", now)
	assert.False(t, ok)
}

type failingStore struct {
	err error
}

func (s failingStore) Get(context.Context, string, interface{}) (bool, error) {
	return false, s.err
}

func (s failingStore) Set(context.Context, string, interface{}, time.Duration) error {
	return s.err
}

func TestRedisCache_LogsStoreErrors(t *testing.T) {
	var buf bytes.Buffer
	c := NewRedisCache(failingStore{err: errors.New("connection refused")}, time.Hour, logger.NewWithWriter(&buf, "debug"))

	ctx := context.Background()
	now := time.Now()
	c.Set(ctx, "^INDIAVIX", 14.2, now)
	_, ok := c.Get(ctx, "^INDIAVIX", now)
	assert.False(t, ok)

	out := buf.String()
	assert.Contains(t, out, "Benchmark cache write failed")
	assert.Contains(t, out, "Benchmark cache read failed")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, `"key":"^INDIAVIX"`)
}

func TestLookup_CachesValue(t *testing.T) {
	f := &fakeFetcher{closes: []float64{13.1, 12.7, 14.05}}
	l := NewLookup(f, NewMemoryCache(24*time.Hour), "", logger.Nop())
	clock := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	v := l.Value(context.Background())
	require.NotNil(t, v)
	assert.Equal(t, 14.05, *v)
	assert.Equal(t, DefaultSymbol, l.Symbol())
	assert.Equal(t, "5d", f.period)

	clock = clock.Add(23 * time.Hour)
	require.NotNil(t, l.Value(context.Background()))
	assert.Equal(t, 1, f.calls)

	clock = clock.Add(2 * time.Hour)
	f.closes = []float64{15}
	v = l.Value(context.Background())
	require.NotNil(t, v)
	assert.Equal(t, 15.0, *v)
	assert.Equal(t, 2, f.calls)
}

func TestLookup_FailureIsNil(t *testing.T) {
	f := &fakeFetcher{err: contracts.ErrNotFound}
	l := NewLookup(f, NewMemoryCache(time.Hour), "^INDIAVIX", logger.Nop())

	assert.Nil(t, l.Value(context.Background()))

	err := l.Refresh(context.Background())
	assert.True(t, errors.Is(err, contracts.ErrNotFound))

	f.err = nil
	f.closes = nil
	assert.Nil(t, l.Value(context.Background()), "empty history")
}

func TestLookup_RefreshOverwrites(t *testing.T) {
	f := &fakeFetcher{closes: []float64{11}}
	cache := NewMemoryCache(time.Hour)
	l := NewLookup(f, cache, "^INDIAVIX", logger.Nop())

	require.NoError(t, l.Refresh(context.Background()))
	f.closes = []float64{12}
	require.NoError(t, l.Refresh(context.Background()))

	v := l.Value(context.Background())
	require.NotNil(t, v)
	assert.Equal(t, 12.0, *v)
	assert.Equal(t, 2, f.calls)
}
