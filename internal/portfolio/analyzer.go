// Package portfolio aggregates holdings into a weighted portfolio return
// series and reports its value-at-risk, sign statistics, beta and stress
// scenarios.
package portfolio

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/risk"
	"github.com/wonny/varlytics/internal/series"
	"github.com/wonny/varlytics/internal/simulation"
	"github.com/wonny/varlytics/internal/volatility"
	"github.com/wonny/varlytics/pkg/config"
	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/metrics"
)

// Defaults
const (
	DefaultMarketSymbol  = "^NSEI"
	DefaultHistoryPeriod = "2y"
	fetchWorkers         = 10
	minBetaOverlap       = 100 // beta needs strictly more overlapping dates
)

// garchSpec is the GARCH(1,1) normal model of the optional GARCH VaR
var garchSpec = volatility.Spec{Family: volatility.FamilyGARCH, Dist: volatility.DistNormal}

// Fitter estimates a volatility model on percent returns
type Fitter interface {
	Fit(returns []float64, spec volatility.Spec) (*volatility.FittedModel, error)
}

// Config holds portfolio settings
type Config struct {
	MarketSymbol  string // beta reference, empty disables beta
	HistoryPeriod string
}

// ConfigFrom extracts the portfolio settings from the application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MarketSymbol:  cfg.Portfolio.MarketSymbol,
		HistoryPeriod: cfg.Portfolio.HistoryPeriod,
	}
}

// Analyzer is the portfolio risk aggregator
// SSOT: portfolio risk reports are assembled here only
type Analyzer struct {
	fetcher contracts.HistoryFetcher
	fitter  Fitter
	engine  *risk.Engine
	cfg     Config
	logger  *logger.Logger
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(fetcher contracts.HistoryFetcher, fitter Fitter, cfg Config, log *logger.Logger) *Analyzer {
	if cfg.HistoryPeriod == "" {
		cfg.HistoryPeriod = DefaultHistoryPeriod
	}
	return &Analyzer{
		fetcher: fetcher,
		fitter:  fitter,
		engine:  risk.NewEngine(),
		cfg:     cfg,
		logger:  log.WithField("module", "portfolio"),
	}
}

// position is one holding with its fetched history
type position struct {
	contracts.Holding
	history *contracts.PriceSeries
	price   float64
	value   float64
	weight  float64
}

// Analyze computes the full portfolio report. Any fetch failure aborts the
// request before a single risk figure is computed.
func (a *Analyzer) Analyze(ctx context.Context, holdings []contracts.Holding, params contracts.PortfolioParams) (*Report, error) {
	start := time.Now()
	defer func() {
		metrics.PortfolioDuration.Observe(time.Since(start).Seconds())
	}()

	holdings, err := contracts.NormalizeHoldings(holdings)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.Seed = simulation.ResolveSeed(params.Seed)

	positions, err := a.fetchAll(ctx, holdings)
	if err != nil {
		return nil, err
	}

	total, err := weigh(positions)
	if err != nil {
		return nil, err
	}

	dates, returns := alignReturns(positions)
	if err := series.RequireMin(series.Returns{Values: returns}, series.MinPortfolioObservations); err != nil {
		return nil, err
	}

	days := params.NumDays
	mean := risk.Mean(returns)
	std := risk.StdDev(returns)

	estimates, err := a.engine.Estimate(ctx, risk.VaRInput{
		TotalValue:  total,
		Returns:     returns,
		Confidence:  params.ConfidenceLevel,
		Days:        days,
		Simulations: params.NumSimulations,
		Seed:        params.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInternal, err)
	}

	analysis := &analysis{
		total:     total,
		positions: positions,
		returns:   returns,
		mean:      mean,
		std:       std,
		estimates: estimates,
		split:     risk.SplitBySign(returns),
		stress:    a.engine.StressValues(total, weightMap(positions), risk.DefaultScenarios()),
		params:    params,
	}

	if params.IncludeGarch {
		analysis.garch, analysis.garchErr = a.garchVaR(total, mean, estimates.ZScore, returns, days)
	}

	if beta, ok := a.beta(ctx, dates, returns); ok {
		analysis.beta = &beta
	}

	report := analysis.report(uuid.New().String())

	a.logger.WithFields(map[string]interface{}{
		"run_id":       report.RunID,
		"holdings":     len(positions),
		"observations": len(returns),
		"total_value":  report.TotalValue,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Portfolio analyzed")

	return report, nil
}

// Detailed runs the analysis without GARCH and returns the VaR-focused view
func (a *Analyzer) Detailed(ctx context.Context, holdings []contracts.Holding, params contracts.PortfolioParams) (*DetailedReport, error) {
	params.IncludeGarch = false
	report, err := a.Analyze(ctx, holdings, params)
	if err != nil {
		return nil, err
	}
	return report.Detailed(), nil
}

// fetchAll fetches every holding concurrently; the first failure cancels the rest
func (a *Analyzer) fetchAll(ctx context.Context, holdings []contracts.Holding) ([]*position, error) {
	positions := make([]*position, len(holdings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)

	for i, h := range holdings {
		g.Go(func() error {
			history, err := a.fetcher.FetchHistory(gctx, h.Symbol, a.cfg.HistoryPeriod)
			if err == nil {
				err = history.Validate()
			}
			var price float64
			if err == nil {
				price, err = history.LastClose()
			}
			if err != nil {
				a.logger.WithError(err).WithField("symbol", h.Symbol).Error("Portfolio fetch failed")
				return fmt.Errorf("Error fetching data for %s: %w", h.Symbol, err)
			}
			positions[i] = &position{Holding: h, history: history, price: price}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return positions, nil
}

// weigh sets value and weight of every position and returns the total value
func weigh(positions []*position) (float64, error) {
	var total float64
	for _, p := range positions {
		p.value = p.Quantity * p.price
		total += p.value
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: portfolio value must be positive", contracts.ErrValidation)
	}
	for _, p := range positions {
		p.weight = p.value / total
	}
	return total, nil
}

func weightMap(positions []*position) map[string]float64 {
	out := make(map[string]float64, len(positions))
	for _, p := range positions {
		out[p.Symbol] = p.weight
	}
	return out
}

// alignReturns keeps the dates on which every holding has a simple return
// and combines them with the position weights
func alignReturns(positions []*position) ([]string, []float64) {
	if len(positions) == 0 {
		return nil, nil
	}

	byDate := make([]map[string]float64, len(positions))
	for i, p := range positions {
		r := series.Simple(p.history)
		m := make(map[string]float64, r.Len())
		for j, d := range r.Dates {
			m[contracts.DateKey(d)] = r.Values[j]
		}
		byDate[i] = m
	}

	var dates []string
	for key := range byDate[0] {
		common := true
		for _, m := range byDate[1:] {
			if _, ok := m[key]; !ok {
				common = false
				break
			}
		}
		if common {
			dates = append(dates, key)
		}
	}
	sort.Strings(dates)

	weights := make([]float64, len(positions))
	assets := make([][]float64, len(positions))
	for i, p := range positions {
		weights[i] = p.weight
		col := make([]float64, len(dates))
		for j, key := range dates {
			col[j] = byDate[i][key]
		}
		assets[i] = col
	}

	return dates, risk.CalculatePortfolioReturns(weights, assets)
}

// garchVaR fits GARCH(1,1) to the portfolio returns and uses its analytic
// cumulative variance over the horizon
func (a *Analyzer) garchVaR(total, mean, z float64, returns []float64, days int) (float64, error) {
	if a.fitter == nil {
		return 0, fmt.Errorf("%w: no volatility fitter configured", contracts.ErrInternal)
	}

	scaled := make([]float64, len(returns))
	for i, r := range returns {
		scaled[i] = r * volatility.PercentScale
	}

	model, err := a.fitter.Fit(scaled, garchSpec)
	metrics.ModelFits.WithLabelValues(garchSpec.String(), metrics.Outcome(err)).Inc()
	if err != nil {
		a.logger.WithError(err).Warn("Portfolio GARCH fit failed")
		return 0, err
	}

	forecast, err := model.AnalyticForecast(days)
	if err != nil {
		return 0, err
	}
	return risk.GARCHVaR(total, mean, z, forecast.CumulativeVariance(), days), nil
}

// beta regresses the portfolio on the market over their common dates.
// Any failure leaves beta out of the report.
func (a *Analyzer) beta(ctx context.Context, dates []string, returns []float64) (float64, bool) {
	if a.cfg.MarketSymbol == "" {
		return 0, false
	}

	history, err := a.fetcher.FetchHistory(ctx, a.cfg.MarketSymbol, a.cfg.HistoryPeriod)
	if err != nil {
		a.logger.WithError(err).WithField("symbol", a.cfg.MarketSymbol).Debug("Market history unavailable, beta omitted")
		return 0, false
	}

	market := series.Simple(history)
	byDate := make(map[string]float64, market.Len())
	for i, d := range market.Dates {
		byDate[contracts.DateKey(d)] = market.Values[i]
	}

	var p, m []float64
	for i, key := range dates {
		if v, ok := byDate[key]; ok {
			p = append(p, returns[i])
			m = append(m, v)
		}
	}
	if len(p) <= minBetaOverlap {
		return 0, false
	}
	return risk.Beta(p, m)
}
