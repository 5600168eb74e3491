package batch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/simulation"
	"github.com/wonny/varlytics/pkg/config"
	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/metrics"
)

// Execution strategy labels
const (
	StrategyOptimized = "optimized"
	StrategyPerModel  = "per_model"
)

// Config holds the batch settings
type Config struct {
	MaxWorkers       int    // optimized strategy pool
	PerModelWorkers  int    // per-model strategy pool
	BootstrapWorkers int    // historical bootstrap chunks in flight
	ForecastPaths    int    // variance forecast simulations per fitted model
	Seed             uint64 // 0 = random per request
	HistoryPeriod    string
}

// ConfigFrom extracts the batch settings from the application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MaxWorkers:       cfg.Simulation.MaxWorkers,
		PerModelWorkers:  cfg.Simulation.PerModelWorkers,
		BootstrapWorkers: cfg.Simulation.MaxWorkers,
		ForecastPaths:    cfg.Simulation.ForecastPaths,
		Seed:             cfg.Simulation.Seed,
		HistoryPeriod:    cfg.Simulation.HistoryPeriod,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxWorkers < 1 {
		c.MaxWorkers = 6
	}
	if c.PerModelWorkers < 1 {
		c.PerModelWorkers = 8
	}
	if c.BootstrapWorkers < 1 {
		c.BootstrapWorkers = c.MaxWorkers
	}
	if c.ForecastPaths < 1 {
		c.ForecastPaths = 1000
	}
	if c.HistoryPeriod == "" {
		c.HistoryPeriod = "5y"
	}
	return c
}

// Service runs catalogue entries, whole batches and the specialty report
type Service struct {
	fetcher   contracts.HistoryFetcher
	benchmark BenchmarkSource
	fitter    Fitter
	cfg       Config
	logger    *logger.Logger
}

// NewService creates a new Service. benchmark may be nil.
func NewService(fetcher contracts.HistoryFetcher, benchmark BenchmarkSource, fitter Fitter, cfg Config, log *logger.Logger) *Service {
	return &Service{
		fetcher:   fetcher,
		benchmark: benchmark,
		fitter:    fitter,
		cfg:       cfg.withDefaults(),
		logger:    log.WithField("module", "batch"),
	}
}

// NewBatch creates a batch for symbol with a resolved seed
func (s *Service) NewBatch(symbol string, params contracts.SimulationParams) *Batch {
	params.Seed = s.resolveSeed(params.Seed)
	return newBatch(symbol, params, s.fetcher, s.benchmark, s.fitter, s.cfg, s.logger)
}

func (s *Service) resolveSeed(seed uint64) uint64 {
	if seed == 0 {
		seed = s.cfg.Seed
	}
	return simulation.ResolveSeed(seed)
}

// RunAllResponse is the envelope of a run-all request
type RunAllResponse struct {
	Symbol              string             `json:"symbol"`
	NumSimulations      int                `json:"num_simulations"`
	NumDays             int                `json:"num_days"`
	Optimized           bool               `json:"optimized"`
	Results             map[string]Outcome `json:"results"`
	BatchID             string             `json:"batch_id"`
	Seed                uint64             `json:"seed"`
	DurationMS          int64              `json:"duration_ms"`
	BenchmarkVolatility *float64           `json:"benchmark_volatility"`
}

// RunAll runs the whole catalogue. The optimized strategy fetches once and
// shares the fits; the per-model strategy gives every entry its own batch.
// Both produce the same numbers for the same seed.
func (s *Service) RunAll(ctx context.Context, symbol string, params contracts.SimulationParams, optimized bool) (*RunAllResponse, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.Seed = s.resolveSeed(params.Seed)

	start := time.Now()
	strategy := StrategyOptimized
	if !optimized {
		strategy = StrategyPerModel
	}

	resp := &RunAllResponse{
		Symbol:         symbol,
		NumSimulations: params.NumSimulations,
		NumDays:        params.NumDays,
		Optimized:      optimized,
		Seed:           params.Seed,
	}

	if optimized {
		b := newBatch(symbol, params, s.fetcher, s.benchmark, s.fitter, s.cfg, s.logger)
		defer b.Close()

		if err := b.Fetch(ctx); err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Error("Batch data fetch failed")
			return nil, err
		}
		resp.BatchID = b.ID
		resp.Results = b.RunEntries(ctx, Catalogue(), s.cfg.MaxWorkers)
		resp.BenchmarkVolatility = b.BenchmarkValue()
	} else {
		resp.BatchID = uuid.New().String()
		resp.Results = runPool(ctx, Catalogue(), s.cfg.PerModelWorkers, func(ctx context.Context, e Entry) Outcome {
			b := newBatch(symbol, params, s.fetcher, s.benchmark, s.fitter, s.cfg, s.logger)
			defer b.Close()
			if err := b.Fetch(ctx); err != nil {
				return Failed(err)
			}
			return b.outcome(ctx, e)
		}, s.logger.WithFields(map[string]interface{}{"batch_id": resp.BatchID, "symbol": symbol}))
		if s.benchmark != nil {
			resp.BenchmarkVolatility = s.benchmark.Value(ctx)
		}
	}

	elapsed := time.Since(start)
	resp.DurationMS = elapsed.Milliseconds()
	metrics.ObserveBatch(strategy, elapsed)

	failed := make([]string, 0)
	for name, o := range resp.Results {
		if !o.OK() {
			failed = append(failed, name)
		}
	}
	s.logger.WithFields(map[string]interface{}{
		"batch_id":    resp.BatchID,
		"symbol":      symbol,
		"strategy":    strategy,
		"duration_ms": resp.DurationMS,
		"failed":      failed,
	}).Info("Batch completed")

	return resp, nil
}

// EntryOptions controls the chart payload of a single entry run
type EntryOptions struct {
	IncludeChart bool
	Compress     bool // gzip+base64 instead of the raw chart object
}

// EntryResponse is the envelope of a single entry run
type EntryResponse struct {
	Symbol         string  `json:"symbol"`
	SimulationType string  `json:"simulation_type"`
	NumSimulations int     `json:"num_simulations"`
	NumDays        int     `json:"num_days"`
	Seed           uint64  `json:"seed"`
	Result         *Result `json:"result"`
}

// RunEntry runs one catalogue entry by name. Errors are returned, not
// wrapped in an Outcome.
func (s *Service) RunEntry(ctx context.Context, symbol, name string, params contracts.SimulationParams, opts EntryOptions) (*EntryResponse, error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	symbol, err = normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := s.NewBatch(symbol, params)
	defer b.Close()

	if err := b.Fetch(ctx); err != nil {
		return nil, err
	}

	paths, err := b.Run(ctx, e, opts.IncludeChart)
	metrics.ModelRuns.WithLabelValues(e.Name, metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	result := &Result{Summary: simulation.Summarize(paths.Terminal)}
	if opts.IncludeChart {
		chart, err := simulation.BuildChart(paths.Matrix)
		if err != nil {
			return nil, err
		}
		if opts.Compress {
			encoded, err := simulation.CompressChart(chart)
			if err != nil {
				return nil, err
			}
			result.CompressedChartData = encoded
		} else {
			result.ChartData = chart
		}
	}

	return &EntryResponse{
		Symbol:         symbol,
		SimulationType: strings.ToLower(e.Name),
		NumSimulations: b.Params.NumSimulations,
		NumDays:        b.Params.NumDays,
		Seed:           b.Params.Seed,
		Result:         result,
	}, nil
}

// Available is the catalogue listing
type Available struct {
	TotalSimulations int                 `json:"total_simulations"`
	SimulationTypes  []string            `json:"simulation_types"`
	Categories       map[string][]string `json:"categories"`
}

// Listing returns the catalogue names in lowercase, grouped by category
func Listing() Available {
	names := Names()
	types := make([]string, len(names))
	for i, n := range names {
		types[i] = strings.ToLower(n)
	}

	categories := make(map[string][]string, 4)
	for category, members := range Categories() {
		lower := make([]string, len(members))
		for i, m := range members {
			lower[i] = strings.ToLower(m)
		}
		categories[category] = lower
	}

	return Available{
		TotalSimulations: len(types),
		SimulationTypes:  types,
		Categories:       categories,
	}
}
