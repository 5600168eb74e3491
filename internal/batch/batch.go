package batch

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/series"
	"github.com/wonny/varlytics/internal/simulation"
	"github.com/wonny/varlytics/internal/volatility"
	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/metrics"
)

// State is the lifecycle stage of a batch
type State int

const (
	StateCreated State = iota
	StateDataFetched
	StateSimulating
	StateAggregated
	StateDone
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateDataFetched:
		return "data_fetched"
	case StateSimulating:
		return "simulating"
	case StateAggregated:
		return "aggregated"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fitter estimates a volatility model on percent returns
type Fitter interface {
	Fit(returns []float64, spec volatility.Spec) (*volatility.FittedModel, error)
}

// BenchmarkSource returns the benchmark volatility value, nil when unavailable
type BenchmarkSource interface {
	Symbol() string
	Value(ctx context.Context) *float64
}

// fitEntry memoizes one fit; concurrent callers wait on the same Once
type fitEntry struct {
	once  sync.Once
	model *volatility.FittedModel
	err   error
}

// Batch is one simulation run over one symbol. It owns the fetched data and
// the fitted models; nothing in it is shared with other batches.
type Batch struct {
	ID     string
	Symbol string
	Params contracts.SimulationParams // Seed already resolved

	fetcher   contracts.HistoryFetcher
	benchmark BenchmarkSource
	fitter    Fitter
	cfg       Config
	logger    *logger.Logger

	mu    sync.Mutex
	state State

	history        *contracts.PriceSeries
	logReturns     series.Returns
	percentReturns []float64
	simpleReturns  []float64
	lastPrice      float64
	benchmarkValue *float64

	fitMu    sync.Mutex
	fits     map[volatility.Spec]*fitEntry
	fitCount atomic.Int32
}

func newBatch(symbol string, params contracts.SimulationParams, fetcher contracts.HistoryFetcher,
	benchmark BenchmarkSource, fitter Fitter, cfg Config, log *logger.Logger) *Batch {
	id := uuid.New().String()
	return &Batch{
		ID:        id,
		Symbol:    symbol,
		Params:    params,
		fetcher:   fetcher,
		benchmark: benchmark,
		fitter:    fitter,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"batch_id": id, "symbol": symbol}),
		state:     StateCreated,
		fits:      make(map[volatility.Spec]*fitEntry),
	}
}

// State returns the current lifecycle stage
func (b *Batch) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// advance moves the batch forward; it never moves backwards
func (b *Batch) advance(to State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if to > b.state {
		b.state = to
	}
}

// Fetch loads the price history and the benchmark value. Once it has
// succeeded, further calls are no-ops.
func (b *Batch) Fetch(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state >= StateDataFetched {
		return nil
	}

	history, err := b.fetcher.FetchHistory(ctx, b.Symbol, b.cfg.HistoryPeriod)
	if err != nil {
		return err
	}
	if err := history.Validate(); err != nil {
		return err
	}

	logReturns := series.Log(history)
	if err := series.RequireNonEmpty(b.Symbol, logReturns); err != nil {
		return err
	}
	lastPrice, err := history.LastClose()
	if err != nil {
		return err
	}

	b.history = history
	b.logReturns = logReturns
	b.percentReturns = logReturns.Scaled(volatility.PercentScale)
	b.simpleReturns = series.Simple(history).Values
	b.lastPrice = lastPrice
	if b.benchmark != nil {
		b.benchmarkValue = b.benchmark.Value(ctx)
	}
	b.state = StateDataFetched

	b.logger.WithFields(map[string]interface{}{
		"resolved":     history.Resolved,
		"observations": logReturns.Len(),
		"last_price":   lastPrice,
	}).Debug("Batch data fetched")

	return nil
}

// LastPrice returns the last close of the fetched history
func (b *Batch) LastPrice() float64 {
	return b.lastPrice
}

// BenchmarkValue returns the benchmark value captured by Fetch
func (b *Batch) BenchmarkValue() *float64 {
	return b.benchmarkValue
}

// FitCount returns how many maximum-likelihood fits this batch has run
func (b *Batch) FitCount() int {
	return int(b.fitCount.Load())
}

// Fit returns the fitted model of spec, fitting it at most once per batch.
// Skew variants share the fit of their base spec.
func (b *Batch) Fit(spec volatility.Spec) (*volatility.FittedModel, error) {
	if b.State() < StateDataFetched {
		return nil, fmt.Errorf("%w: batch data not fetched", contracts.ErrInternal)
	}

	b.fitMu.Lock()
	entry, ok := b.fits[spec]
	if !ok {
		entry = &fitEntry{}
		b.fits[spec] = entry
	}
	b.fitMu.Unlock()

	entry.once.Do(func() {
		b.fitCount.Add(1)
		entry.model, entry.err = b.fitter.Fit(b.percentReturns, spec)
		metrics.ModelFits.WithLabelValues(spec.String(), metrics.Outcome(entry.err)).Inc()
		if entry.err != nil {
			b.logger.WithError(entry.err).WithField("spec", spec.String()).Warn("Model fit failed")
		}
	})
	return entry.model, entry.err
}

// Run simulates one catalogue entry. keepPaths retains the full price
// matrix for charts and target inference.
func (b *Batch) Run(ctx context.Context, e Entry, keepPaths bool) (*simulation.Paths, error) {
	if b.State() < StateDataFetched {
		return nil, fmt.Errorf("%w: batch data not fetched", contracts.ErrInternal)
	}
	b.advance(StateSimulating)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch e.Kind {
	case KindParametric:
		return b.runParametric(e, keepPaths)
	case KindHistorical:
		return b.runHistorical(ctx, e, keepPaths)
	case KindMonteCarlo:
		return b.runConstant(e, keepPaths, false)
	case KindRiskMetrics:
		return b.runRiskMetrics(e, keepPaths)
	case KindSimpleVariance:
		return b.runConstant(e, keepPaths, true)
	default:
		return nil, fmt.Errorf("%w: unknown catalogue kind %d", contracts.ErrInternal, e.Kind)
	}
}

// outcome runs e and reduces it to a summary, isolating any failure
func (b *Batch) outcome(ctx context.Context, e Entry) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failed(fmt.Errorf("%w: %s panicked: %v", contracts.ErrInternal, e.Name, r))
		}
	}()

	paths, err := b.Run(ctx, e, false)
	if err != nil {
		return Failed(err)
	}
	return Ok(&Result{Summary: simulation.Summarize(paths.Terminal)})
}

// RunEntries runs entries on a pool of workers and collects their outcomes
// keyed by catalogue name
func (b *Batch) RunEntries(ctx context.Context, entries []Entry, workers int) map[string]Outcome {
	results := runPool(ctx, entries, workers, b.outcome, b.logger)
	b.advance(StateAggregated)
	return results
}

// Close releases the fitted models and ends the batch
func (b *Batch) Close() {
	b.fitMu.Lock()
	b.fits = make(map[volatility.Spec]*fitEntry)
	b.fitMu.Unlock()
	b.advance(StateDone)
}

func (b *Batch) request(mean, vol []float64, shocks simulation.ShockGenerator) simulation.Request {
	return simulation.Request{
		LastPrice: b.lastPrice,
		Mean:      mean,
		Vol:       vol,
		Days:      b.Params.NumDays,
		Paths:     b.Params.NumSimulations,
		Shocks:    shocks,
	}
}

func simulatePaths(r simulation.Request, rng *rand.Rand, keepPaths bool) (*simulation.Paths, error) {
	if keepPaths {
		return simulation.Simulate(r, rng)
	}
	return simulation.SimulateTerminal(r, rng)
}

// runParametric forecasts the fitted model by simulation and drives the
// price paths with the entry's shock policy
func (b *Batch) runParametric(e Entry, keepPaths bool) (*simulation.Paths, error) {
	model, err := b.Fit(e.Spec)
	if err != nil {
		return nil, err
	}

	rng := simulation.NewRand(b.Params.Seed, e.stream())
	forecast, err := model.SimulateForecast(b.Params.NumDays, b.cfg.ForecastPaths, rng)
	if err != nil {
		return nil, err
	}
	mean, vol := forecast.Descale()

	nu := simulation.DefaultStudentTNu
	if v, ok := model.Param("nu"); ok && v > 0 {
		nu = v
	}

	// The forecast and the paths draw from the same entry stream
	r := b.request(mean, vol, simulation.ShocksFor(e.Spec.Dist, e.Skew, nu))
	return simulatePaths(r, rng, keepPaths)
}

// runHistorical resamples the historical simple returns
func (b *Batch) runHistorical(ctx context.Context, e Entry, keepPaths bool) (*simulation.Paths, error) {
	return simulation.Bootstrap(ctx, simulation.BootstrapRequest{
		LastPrice: b.lastPrice,
		Returns:   b.simpleReturns,
		Days:      b.Params.NumDays,
		Paths:     b.Params.NumSimulations,
		Seed:      b.Params.Seed,
		Stream:    e.stream(),
		Workers:   b.cfg.BootstrapWorkers,
		KeepPaths: keepPaths,
	})
}

// runConstant is geometric Brownian motion on the full-sample log-return
// mean and standard deviation
func (b *Batch) runConstant(e Entry, keepPaths, noDrag bool) (*simulation.Paths, error) {
	if b.logReturns.Len() < 2 {
		return nil, fmt.Errorf("%w: %s needs at least 2 returns", contracts.ErrInsufficientData, e.Name)
	}
	days := b.Params.NumDays
	mu, sigma := b.logReturns.Mean(), b.logReturns.StdDev()

	r := b.request(simulation.Constant(days, mu), simulation.Constant(days, sigma), simulation.NormalShocks{})
	r.NoVarianceDrag = noDrag
	return simulatePaths(r, simulation.NewRand(b.Params.Seed, e.stream()), keepPaths)
}

// runRiskMetrics uses the EWMA volatility at the last observation
func (b *Batch) runRiskMetrics(e Entry, keepPaths bool) (*simulation.Paths, error) {
	variance, err := volatility.EWMAVariance(b.logReturns.Values, volatility.RiskMetricsLambda)
	if err != nil {
		return nil, err
	}
	days := b.Params.NumDays
	vol := math.Sqrt(variance)

	r := b.request(simulation.Constant(days, b.logReturns.Mean()), simulation.Constant(days, vol), simulation.NormalShocks{})
	return simulatePaths(r, simulation.NewRand(b.Params.Seed, e.stream()), keepPaths)
}

// normalizeSymbol trims and upper-cases a requested symbol
func normalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("%w: symbol is required", contracts.ErrValidation)
	}
	return s, nil
}
