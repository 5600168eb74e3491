package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/varlytics/internal/marketdata"
	"github.com/wonny/varlytics/pkg/logger"
)

type fakeRefresher struct {
	err   error
	calls int
}

func (f *fakeRefresher) Symbol() string { return "^INDIAVIX" }

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls++
	return f.err
}

type fakeSyncer struct {
	results []marketdata.SyncResult
	err     error
	symbols []string
}

func (f *fakeSyncer) SyncAll(_ context.Context, symbols []string, _ marketdata.SyncConfig) ([]marketdata.SyncResult, error) {
	f.symbols = symbols
	return f.results, f.err
}

func TestBenchmarkRefreshJob(t *testing.T) {
	r := &fakeRefresher{}
	job := NewBenchmarkRefreshJob(r, "0 0 9 * * *", logger.Nop())

	assert.Equal(t, "benchmark_refresh", job.Name())
	assert.Equal(t, "0 0 9 * * *", job.Schedule())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, r.calls)

	r.err = errors.New("upstream down")
	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "^INDIAVIX")
}

func TestPriceSyncJob(t *testing.T) {
	cfg := marketdata.SyncConfig{Workers: 2, Period: "5y"}

	t.Run("partial failure", func(t *testing.T) {
		s := &fakeSyncer{results: []marketdata.SyncResult{
			{Symbol: "TCS", Count: 10},
			{Symbol: "BAD", Error: errors.New("not found")},
		}}
		job := NewPriceSyncJob(s, []string{"TCS", "BAD"}, cfg, "@daily", logger.Nop())
		assert.NoError(t, job.Run(context.Background()))
		assert.Equal(t, []string{"TCS", "BAD"}, s.symbols)
	})

	t.Run("all failed", func(t *testing.T) {
		s := &fakeSyncer{results: []marketdata.SyncResult{{Symbol: "BAD", Error: errors.New("not found")}}}
		job := NewPriceSyncJob(s, []string{"BAD"}, cfg, "@daily", logger.Nop())
		assert.Error(t, job.Run(context.Background()))
	})

	t.Run("syncer error", func(t *testing.T) {
		s := &fakeSyncer{err: errors.New("invalid config")}
		job := NewPriceSyncJob(s, []string{"TCS"}, cfg, "@daily", logger.Nop())
		assert.Error(t, job.Run(context.Background()))
	})

	t.Run("no symbols", func(t *testing.T) {
		s := &fakeSyncer{}
		job := NewPriceSyncJob(s, nil, cfg, "@daily", logger.Nop())
		assert.NoError(t, job.Run(context.Background()))
		assert.Nil(t, s.symbols)
	})
}
