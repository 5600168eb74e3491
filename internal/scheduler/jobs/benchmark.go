// Package jobs holds the scheduled jobs of the worker process.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/varlytics/pkg/logger"
)

// BenchmarkRefresher re-populates the benchmark volatility cache
type BenchmarkRefresher interface {
	Symbol() string
	Refresh(ctx context.Context) error
}

// BenchmarkRefreshJob keeps the benchmark volatility warm
type BenchmarkRefreshJob struct {
	lookup   BenchmarkRefresher
	schedule string
	logger   *logger.Logger
}

// NewBenchmarkRefreshJob creates a new benchmark refresh job
func NewBenchmarkRefreshJob(lookup BenchmarkRefresher, schedule string, log *logger.Logger) *BenchmarkRefreshJob {
	return &BenchmarkRefreshJob{
		lookup:   lookup,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *BenchmarkRefreshJob) Name() string {
	return "benchmark_refresh"
}

// Schedule returns the cron schedule
func (j *BenchmarkRefreshJob) Schedule() string {
	return j.schedule
}

// Run fetches the benchmark and overwrites the cached value
func (j *BenchmarkRefreshJob) Run(ctx context.Context) error {
	if err := j.lookup.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh %s: %w", j.lookup.Symbol(), err)
	}
	j.logger.WithField("symbol", j.lookup.Symbol()).Info("Benchmark volatility refreshed")
	return nil
}
