package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/varlytics/internal/marketdata"
	"github.com/wonny/varlytics/pkg/logger"
)

// PriceSyncer copies remote history into the price table
type PriceSyncer interface {
	SyncAll(ctx context.Context, symbols []string, cfg marketdata.SyncConfig) ([]marketdata.SyncResult, error)
}

// PriceSyncJob refreshes the price table for a fixed symbol list
// SSOT: the price sync schedule lives in this job only
type PriceSyncJob struct {
	syncer   PriceSyncer
	symbols  []string
	cfg      marketdata.SyncConfig
	schedule string
	logger   *logger.Logger
}

// NewPriceSyncJob creates a new price sync job
func NewPriceSyncJob(syncer PriceSyncer, symbols []string, cfg marketdata.SyncConfig, schedule string, log *logger.Logger) *PriceSyncJob {
	return &PriceSyncJob{
		syncer:   syncer,
		symbols:  symbols,
		cfg:      cfg,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Schedule returns the cron schedule
func (j *PriceSyncJob) Schedule() string {
	return j.schedule
}

// Run syncs every symbol. A run in which every symbol failed is an error;
// partial failures are logged only.
func (j *PriceSyncJob) Run(ctx context.Context) error {
	if len(j.symbols) == 0 {
		j.logger.Debug("No symbols configured for price sync")
		return nil
	}

	results, err := j.syncer.SyncAll(ctx, j.symbols, j.cfg)
	if err != nil {
		return fmt.Errorf("sync prices: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("sync prices: all %d symbols failed", failed)
	}
	if failed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"failed": failed,
			"total":  len(results),
		}).Warn("Price sync finished with failures")
	}
	return nil
}
