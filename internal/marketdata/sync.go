package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/logger"
)

// Syncer copies price history from a remote source into the price table
// SSOT: the price table is only populated here
type Syncer struct {
	source contracts.HistoryFetcher
	repo   contracts.PriceRepository
	logger *logger.Logger
}

// SyncConfig holds syncer configuration
type SyncConfig struct {
	Workers int    // Number of concurrent workers
	Period  string // history window per symbol, e.g. "5y"
}

// SyncResult represents the result of syncing one symbol
type SyncResult struct {
	Symbol   string
	Resolved string
	Count    int
	Error    error
}

// NewSyncer creates a new Syncer
func NewSyncer(source contracts.HistoryFetcher, repo contracts.PriceRepository, log *logger.Logger) *Syncer {
	return &Syncer{
		source: source,
		repo:   repo,
		logger: log.WithField("module", "price_sync"),
	}
}

// SyncAll fetches and stores the history of every symbol. Per-symbol
// failures are reported in the results, never returned.
func (s *Syncer) SyncAll(ctx context.Context, symbols []string, cfg SyncConfig) ([]SyncResult, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%w: workers must be positive", contracts.ErrValidation)
	}
	if _, err := PeriodStart(time.Now(), cfg.Period); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol_count": len(symbols),
		"period":       cfg.Period,
		"workers":      cfg.Workers,
	}).Info("Starting price sync")

	results := make([]SyncResult, 0, len(symbols))
	resultCh := make(chan SyncResult, len(symbols))

	var wg sync.WaitGroup
	symbolCh := make(chan string, len(symbols))

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID, symbolCh, resultCh, cfg.Period)
		}(i)
	}

	for _, symbol := range symbols {
		symbolCh <- symbol
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	successCount := 0
	failCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Price sync completed")

	return results, nil
}

func (s *Syncer) worker(ctx context.Context, workerID int, symbolCh <-chan string, resultCh chan<- SyncResult, period string) {
	for symbol := range symbolCh {
		select {
		case <-ctx.Done():
			resultCh <- SyncResult{Symbol: symbol, Error: ctx.Err()}
			continue
		default:
		}

		series, err := s.source.FetchHistory(ctx, symbol, period)
		if err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": symbol,
			}).Error("Failed to fetch prices")
			resultCh <- SyncResult{Symbol: symbol, Error: err}
			continue
		}

		// Stored under the resolved ticker so PostgresFetcher finds it
		// through the same candidate list
		ticker := series.Resolved
		if ticker == "" {
			ticker = series.Symbol
		}

		if err := s.repo.SaveBatch(ctx, ticker, series.Bars); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": symbol,
			}).Error("Failed to save prices")
			resultCh <- SyncResult{Symbol: symbol, Resolved: ticker, Count: len(series.Bars), Error: err}
			continue
		}

		s.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": ticker,
			"count":  len(series.Bars),
		}).Debug("Synced prices")

		resultCh <- SyncResult{Symbol: symbol, Resolved: ticker, Count: len(series.Bars)}
	}
}
