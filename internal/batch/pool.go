package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/metrics"
)

// taskResult is the outcome of one entry on the pool
type taskResult struct {
	name    string
	outcome Outcome
}

// runPool executes run for every entry on a fixed number of workers.
// Results are keyed by entry name, so the map does not depend on
// completion order.
func runPool(ctx context.Context, entries []Entry, workers int, run func(context.Context, Entry) Outcome, log *logger.Logger) map[string]Outcome {
	if workers < 1 {
		workers = 1
	}

	log.WithFields(map[string]interface{}{
		"entry_count": len(entries),
		"workers":     workers,
	}).Info("Starting catalogue run")

	resultCh := make(chan taskResult, len(entries))
	entryCh := make(chan Entry, len(entries))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for e := range entryCh {
				outcome := safeRun(ctx, e, run)
				metrics.ModelRuns.WithLabelValues(e.Name, metrics.Outcome(outcome.Err)).Inc()
				if !outcome.OK() {
					log.WithError(outcome.Err).WithFields(map[string]interface{}{
						"worker": workerID,
						"model":  e.Name,
					}).Warn("Catalogue entry failed")
				}
				resultCh <- taskResult{name: e.Name, outcome: outcome}
			}
		}(i)
	}

	for _, e := range entries {
		entryCh <- e
	}
	close(entryCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make(map[string]Outcome, len(entries))
	failCount := 0
	for r := range resultCh {
		results[r.name] = r.outcome
		if !r.outcome.OK() {
			failCount++
		}
	}

	log.WithFields(map[string]interface{}{
		"success": len(results) - failCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Catalogue run completed")

	return results
}

// safeRun turns a panicking entry into a failed outcome
func safeRun(ctx context.Context, e Entry, run func(context.Context, Entry) Outcome) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Failed(fmt.Errorf("%s: panic: %v", e.Name, r))
		}
	}()
	return run(ctx, e)
}
