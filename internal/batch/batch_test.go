package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/simulation"
	"github.com/wonny/varlytics/internal/volatility"
	"github.com/wonny/varlytics/pkg/logger"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeFetcher struct {
	calls  atomic.Int32
	err    error
	series *contracts.PriceSeries
}

func (f *fakeFetcher) FetchHistory(_ context.Context, symbol, _ string) (*contracts.PriceSeries, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := *f.series
	out.Symbol = symbol
	return &out, nil
}

// syntheticSeries is a GBM close series with daily log-return mean mu and stdev sigma
func syntheticSeries(n int, mu, sigma float64) *contracts.PriceSeries {
	rng := simulation.NewRand(42, 7)
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.PriceBar, n)
	price := 100.0
	for i := range bars {
		if i > 0 {
			price *= math.Exp(mu + sigma*rng.NormFloat64())
		}
		bars[i] = contracts.PriceBar{Date: start.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price}
	}
	return &contracts.PriceSeries{Symbol: "TEST", Resolved: "TEST.NS", Bars: bars}
}

type fakeFitter struct {
	mu    sync.Mutex
	calls map[volatility.Spec]int
	fail  map[volatility.Spec]error
}

func newFakeFitter() *fakeFitter {
	return &fakeFitter{calls: map[volatility.Spec]int{}, fail: map[volatility.Spec]error{}}
}

func (f *fakeFitter) Fit(returns []float64, spec volatility.Spec) (*volatility.FittedModel, error) {
	f.mu.Lock()
	f.calls[spec]++
	err := f.fail[spec]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	p := volatility.Params{Mu: 0.05, Omega: 0.02, Alpha: 0.08, Beta: 0.9}
	if spec.Family == volatility.FamilyEGARCH {
		p = volatility.Params{Mu: 0.05, Omega: 0.01, Alpha: 0.1, Beta: 0.98}
	}
	if spec.LeverageOrder == 1 {
		p.Alpha, p.Gamma = 0.05, 0.06
	}
	switch spec.Dist {
	case volatility.DistStudentT:
		p.Nu = 8
	case volatility.DistGED:
		p.Nu = 1.5
	case volatility.DistSkewT:
		p.Nu, p.Lambda = 8, -0.2
	}
	return &volatility.FittedModel{
		Spec:         spec,
		Params:       p,
		NObs:         len(returns),
		LastResidual: 0.5,
		LastVariance: 1.0,
	}, nil
}

func (f *fakeFitter) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeBenchmark struct {
	value *float64
}

func (b fakeBenchmark) Symbol() string                 { return "^INDIAVIX" }
func (b fakeBenchmark) Value(context.Context) *float64 { return b.value }

func testParams() contracts.SimulationParams {
	return contracts.SimulationParams{NumSimulations: 200, NumDays: 20, Seed: 12345}
}

func newTestService(fetcher contracts.HistoryFetcher, fitter Fitter, bench BenchmarkSource) *Service {
	cfg := Config{MaxWorkers: 4, PerModelWorkers: 4, BootstrapWorkers: 2, ForecastPaths: 50, HistoryPeriod: "5y"}
	return NewService(fetcher, bench, fitter, cfg, logger.Nop())
}

func ptr(v float64) *float64 { return &v }

// ============================================================================
// Catalogue
// ============================================================================

func TestCatalogue(t *testing.T) {
	want := []string{
		"GARCH-N", "GARCH-T", "GARCH-GED", "GARCH-SKEWED-N", "GARCH-SKEWED-T", "GARCH-SKEWED-GED",
		"EGARCH-N", "EGARCH-T", "EGARCH-GED", "EGARCH-SKEWED-N", "EGARCH-SKEWED-T", "EGARCH-SKEWED-GED",
		"GJR-GARCH-N", "GJR-GARCH-T", "GJR-GARCH-GED", "GJR-GARCH-SKEWED-N", "GJR-GARCH-SKEWED-T", "GJR-GARCH-SKEWED-GED",
		"HISTORICAL", "MONTE-CARLO", "RISK-METRICS", "SIMPLE-VARIANCE",
	}
	assert.Equal(t, want, Names())

	for i, e := range Catalogue() {
		assert.Equal(t, Model(i), e.Model)
		assert.Equal(t, e.Name, e.Model.String())
	}
	assert.Equal(t, "Model(99)", Model(99).String())

	cats := Categories()
	assert.Len(t, cats[CategoryGARCH], 6)
	assert.Len(t, cats[CategoryEGARCH], 6)
	assert.Len(t, cats[CategoryGJRGARCH], 6)
	assert.Equal(t, []string{"HISTORICAL", "MONTE-CARLO", "RISK-METRICS", "SIMPLE-VARIANCE"}, cats[CategoryClassical])

	// Skew variants share the base fit
	assert.Len(t, FitSpecs(), 9)
}

func TestCatalogueEntries(t *testing.T) {
	tests := []struct {
		name string
		spec volatility.Spec
		skew float64
	}{
		{"GARCH-N", volatility.Spec{Family: volatility.FamilyGARCH, Dist: volatility.DistNormal}, 0},
		{"GARCH-SKEWED-N", volatility.Spec{Family: volatility.FamilyGARCH, Dist: volatility.DistNormal}, SkewNormal},
		{"EGARCH-SKEWED-T", volatility.Spec{Family: volatility.FamilyEGARCH, Dist: volatility.DistStudentT}, SkewT},
		{"GJR-GARCH-SKEWED-GED", volatility.Spec{Family: volatility.FamilyGARCH, Dist: volatility.DistGED, LeverageOrder: 1}, SkewGED},
		{"GJR-GARCH-T", volatility.Spec{Family: volatility.FamilyGARCH, Dist: volatility.DistStudentT, LeverageOrder: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.True(t, e.Parametric())
			assert.Equal(t, tt.spec, e.Spec)
			assert.Equal(t, tt.skew, e.Skew)
		})
	}
}

func TestLookup(t *testing.T) {
	e, err := Lookup(" garch-skewed-t ")
	require.NoError(t, err)
	assert.Equal(t, GarchSkewedT, e.Model)

	e, err = Lookup("Monte-Carlo")
	require.NoError(t, err)
	assert.Equal(t, KindMonteCarlo, e.Kind)

	_, err = Lookup("garch-x")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
	assert.Contains(t, err.Error(), "Simulation type 'garch-x' not found. Available types: garch-n, garch-t")
}

func TestListing(t *testing.T) {
	l := Listing()
	assert.Equal(t, 22, l.TotalSimulations)
	assert.Equal(t, "garch-n", l.SimulationTypes[0])
	assert.Equal(t, "simple-variance", l.SimulationTypes[21])
	assert.Contains(t, l.Categories[CategoryGJRGARCH], "gjr-garch-skewed-ged")
	assert.Len(t, l.Categories, 4)
}

// ============================================================================
// Outcome
// ============================================================================

func TestOutcomeJSON(t *testing.T) {
	ok := Ok(&Result{Summary: simulation.Summary{Mean: 101.5, Min: 80, Max: 130, PMin: 0.01, PMax: 0.02}})
	data, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":101.5,"min":80,"max":130,"P(min)":0.01,"P(max)":0.02}`, string(data))

	failed := Failed(errors.New("model fit failed: boom"))
	data, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"model fit failed: boom"}`, string(data))
	assert.False(t, failed.OK())

	var back Outcome
	require.NoError(t, json.Unmarshal(data, &back))
	assert.EqualError(t, back.Err, "model fit failed: boom")

	require.NoError(t, json.Unmarshal([]byte(`{"mean":1,"min":1,"max":1,"P(min)":1,"P(max)":1}`), &back))
	assert.True(t, back.OK())
	assert.Equal(t, 1.0, back.Result.Mean)

	assert.Error(t, Failed(nil).Err)
}

// ============================================================================
// Batch lifecycle
// ============================================================================

func TestBatchFetchIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}
	svc := newTestService(fetcher, newFakeFitter(), fakeBenchmark{value: ptr(13.2)})

	b := svc.NewBatch("TEST", testParams())
	assert.Equal(t, StateCreated, b.State())

	_, err := b.Run(context.Background(), MonteCarlo.Entry(), false)
	assert.ErrorIs(t, err, contracts.ErrInternal)
	_, err = b.Fit(volatility.Spec{})
	assert.ErrorIs(t, err, contracts.ErrInternal)

	require.NoError(t, b.Fetch(context.Background()))
	require.NoError(t, b.Fetch(context.Background()))
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, StateDataFetched, b.State())
	assert.Equal(t, 13.2, *b.BenchmarkValue())
	assert.Greater(t, b.LastPrice(), 0.0)

	_, err = b.Run(context.Background(), MonteCarlo.Entry(), false)
	require.NoError(t, err)
	assert.Equal(t, StateSimulating, b.State())

	b.RunEntries(context.Background(), []Entry{Historical.Entry()}, 1)
	assert.Equal(t, StateAggregated, b.State())

	b.Close()
	assert.Equal(t, StateDone, b.State())
	assert.Equal(t, "done", b.State().String())
}

func TestBatchFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: contracts.ErrNotFound}
	b := newTestService(fetcher, newFakeFitter(), nil).NewBatch("NOPE", testParams())

	assert.ErrorIs(t, b.Fetch(context.Background()), contracts.ErrNotFound)
	assert.Equal(t, StateCreated, b.State())
}

func TestBatchRejectsSinglePrice(t *testing.T) {
	fetcher := &fakeFetcher{series: syntheticSeries(1, 0, 0.01)}
	b := newTestService(fetcher, newFakeFitter(), nil).NewBatch("ONE", testParams())

	assert.ErrorIs(t, b.Fetch(context.Background()), contracts.ErrInsufficientData)
}

func TestFitIsCachedPerBatch(t *testing.T) {
	fetcher := &fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}
	fitter := newFakeFitter()
	svc := newTestService(fetcher, fitter, nil)

	b := svc.NewBatch("TEST", testParams())
	require.NoError(t, b.Fetch(context.Background()))

	spec := GarchT.Entry().Spec
	first, err := b.Fit(spec)
	require.NoError(t, err)
	second, err := b.Fit(spec)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, b.FitCount())

	results := b.RunEntries(context.Background(), Catalogue(), 4)
	assert.Len(t, results, 22)
	assert.Equal(t, 9, b.FitCount())
	for spec, n := range fitter.calls {
		assert.Equal(t, 1, n, spec.String())
	}

	// A fresh batch fits again
	other := svc.NewBatch("TEST", testParams())
	require.NoError(t, other.Fetch(context.Background()))
	_, err = other.Fit(spec)
	require.NoError(t, err)
	assert.Equal(t, 10, fitter.total())
}

// ============================================================================
// Run all
// ============================================================================

func TestRunAllOptimized(t *testing.T) {
	fetcher := &fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}
	svc := newTestService(fetcher, newFakeFitter(), fakeBenchmark{value: ptr(14.1)})

	resp, err := svc.RunAll(context.Background(), " test ", testParams(), true)
	require.NoError(t, err)

	assert.Equal(t, "TEST", resp.Symbol)
	assert.True(t, resp.Optimized)
	assert.Equal(t, uint64(12345), resp.Seed)
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, 14.1, *resp.BenchmarkVolatility)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	require.Len(t, resp.Results, 22)
	for name, o := range resp.Results {
		require.True(t, o.OK(), "%s: %v", name, o.Err)
		r := o.Result
		assert.Greater(t, r.Mean, 0.0, name)
		assert.LessOrEqual(t, r.Min, r.Mean, name)
		assert.GreaterOrEqual(t, r.Max, r.Mean, name)
		assert.True(t, r.PMin > 0 && r.PMin <= 1, name)
		assert.True(t, r.PMax > 0 && r.PMax <= 1, name)
	}
}

func TestRunAllIsolatesFailures(t *testing.T) {
	fetcher := &fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}
	fitter := newFakeFitter()
	fitter.fail[GarchT.Entry().Spec] = errors.New("model fit failed: optimizer did not converge")
	svc := newTestService(fetcher, fitter, nil)

	resp, err := svc.RunAll(context.Background(), "TEST", testParams(), true)
	require.NoError(t, err)
	require.Len(t, resp.Results, 22)

	for _, name := range []string{"GARCH-T", "GARCH-SKEWED-T"} {
		o := resp.Results[name]
		require.False(t, o.OK(), name)
		assert.Contains(t, o.Err.Error(), "did not converge")
	}
	assert.True(t, resp.Results["GARCH-N"].OK())
	assert.True(t, resp.Results["GJR-GARCH-T"].OK())
	assert.True(t, resp.Results["HISTORICAL"].OK())
	assert.Nil(t, resp.BenchmarkVolatility)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"GARCH-T":{"error":"model fit failed: optimizer did not converge"}`)
}

func TestRunPoolRecoversPanics(t *testing.T) {
	entries := Catalogue()[:3]
	run := func(_ context.Context, e Entry) Outcome {
		if e.Name == entries[1].Name {
			panic("boom")
		}
		return Ok(&Result{})
	}

	results := runPool(context.Background(), entries, 2, run, logger.Nop())
	require.Len(t, results, 3)
	assert.True(t, results[entries[0].Name].OK())
	assert.True(t, results[entries[2].Name].OK())

	failed := results[entries[1].Name]
	require.False(t, failed.OK())
	assert.Contains(t, failed.Err.Error(), "panic: boom")
}

func TestRunAllStrategiesAgree(t *testing.T) {
	series := syntheticSeries(300, 0.0005, 0.02)

	optimizedFetcher := &fakeFetcher{series: series}
	optimized, err := newTestService(optimizedFetcher, newFakeFitter(), nil).
		RunAll(context.Background(), "TEST", testParams(), true)
	require.NoError(t, err)

	perModelFetcher := &fakeFetcher{series: series}
	perModel, err := newTestService(perModelFetcher, newFakeFitter(), nil).
		RunAll(context.Background(), "TEST", testParams(), false)
	require.NoError(t, err)

	assert.False(t, perModel.Optimized)
	assert.Equal(t, int32(1), optimizedFetcher.calls.Load())
	assert.Equal(t, int32(22), perModelFetcher.calls.Load())
	assert.Equal(t, optimized.Results, perModel.Results)
}

func TestRunAllIsReproducible(t *testing.T) {
	series := syntheticSeries(300, 0.0005, 0.02)
	run := func(workers int) map[string]Outcome {
		svc := newTestService(&fakeFetcher{series: series}, newFakeFitter(), nil)
		svc.cfg.MaxWorkers = workers
		resp, err := svc.RunAll(context.Background(), "TEST", testParams(), true)
		require.NoError(t, err)
		return resp.Results
	}
	assert.Equal(t, run(1), run(6))
}

func TestRunAllFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: fmtNotFound("NOPE")}
	svc := newTestService(fetcher, newFakeFitter(), nil)

	_, err := svc.RunAll(context.Background(), "NOPE", testParams(), true)
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	resp, err := svc.RunAll(context.Background(), "NOPE", testParams(), false)
	require.NoError(t, err)
	require.Len(t, resp.Results, 22)
	for name, o := range resp.Results {
		require.False(t, o.OK(), name)
		assert.Contains(t, o.Err.Error(), "no historical data found for symbol 'NOPE'")
	}
}

func TestRunAllValidation(t *testing.T) {
	svc := newTestService(&fakeFetcher{series: syntheticSeries(300, 0, 0.01)}, newFakeFitter(), nil)

	tests := []contracts.SimulationParams{
		{NumSimulations: 99, NumDays: 10},
		{NumSimulations: 10001, NumDays: 10},
		{NumSimulations: 100, NumDays: 0},
		{NumSimulations: 100, NumDays: 1001},
	}
	for _, p := range tests {
		_, err := svc.RunAll(context.Background(), "TEST", p, true)
		assert.ErrorIs(t, err, contracts.ErrValidation)
	}

	_, err := svc.RunAll(context.Background(), "  ", testParams(), true)
	assert.ErrorIs(t, err, contracts.ErrValidation)
}

func fmtNotFound(symbol string) error {
	return fmt.Errorf("%w: no historical data found for symbol '%s'", contracts.ErrNotFound, symbol)
}

// ============================================================================
// Single entry
// ============================================================================

func TestRunEntryMatchesBatch(t *testing.T) {
	series := syntheticSeries(300, 0.0005, 0.02)
	svc := newTestService(&fakeFetcher{series: series}, newFakeFitter(), nil)

	all, err := svc.RunAll(context.Background(), "TEST", testParams(), true)
	require.NoError(t, err)

	for _, name := range []string{"garch-skewed-t", "egarch-ged", "historical", "risk-metrics"} {
		t.Run(name, func(t *testing.T) {
			resp, err := svc.RunEntry(context.Background(), "TEST", name, testParams(), EntryOptions{IncludeChart: true})
			require.NoError(t, err)
			assert.Equal(t, name, resp.SimulationType)
			assert.Equal(t, all.Results[strings.ToUpper(name)].Result.Summary, resp.Result.Summary)

			chart := resp.Result.ChartData
			require.NotNil(t, chart)
			assert.Len(t, chart.LineChart, 20)
			assert.Len(t, chart.LineChart[0], simulation.ChartSamplePaths+1)
			assert.Len(t, chart.Histogram, simulation.ChartBins)
			assert.Empty(t, resp.Result.CompressedChartData)
		})
	}
}

func TestRunEntryChartOptions(t *testing.T) {
	svc := newTestService(&fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}, newFakeFitter(), nil)

	plain, err := svc.RunEntry(context.Background(), "TEST", "MONTE-CARLO", testParams(), EntryOptions{})
	require.NoError(t, err)
	assert.Nil(t, plain.Result.ChartData)
	assert.Empty(t, plain.Result.CompressedChartData)

	raw, err := svc.RunEntry(context.Background(), "TEST", "MONTE-CARLO", testParams(), EntryOptions{IncludeChart: true})
	require.NoError(t, err)

	compressed, err := svc.RunEntry(context.Background(), "TEST", "MONTE-CARLO", testParams(), EntryOptions{IncludeChart: true, Compress: true})
	require.NoError(t, err)
	assert.Nil(t, compressed.Result.ChartData)

	decoded, err := simulation.DecompressChart(compressed.Result.CompressedChartData)
	require.NoError(t, err)
	assert.Equal(t, raw.Result.ChartData, decoded)
	assert.Equal(t, plain.Result.Summary, raw.Result.Summary)
}

func TestRunEntryErrors(t *testing.T) {
	fitter := newFakeFitter()
	fitter.fail[EgarchN.Entry().Spec] = fmt.Errorf("%w: no convergence", contracts.ErrModelFit)
	svc := newTestService(&fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}, fitter, nil)

	_, err := svc.RunEntry(context.Background(), "TEST", "nope", testParams(), EntryOptions{})
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = svc.RunEntry(context.Background(), "TEST", "egarch-skewed-n", testParams(), EntryOptions{})
	assert.ErrorIs(t, err, contracts.ErrModelFit)

	_, err = svc.RunEntry(context.Background(), "TEST", "garch-n", contracts.SimulationParams{NumSimulations: 5, NumDays: 5}, EntryOptions{})
	assert.ErrorIs(t, err, contracts.ErrValidation)
}

// ============================================================================
// Specialty report
// ============================================================================

func TestReport(t *testing.T) {
	fitter := newFakeFitter()
	svc := newTestService(&fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}, fitter, fakeBenchmark{value: ptr(14.567)})

	report, err := svc.Report(context.Background(), "test", testParams())
	require.NoError(t, err)

	assert.Equal(t, ReportModelLabel, report.Model)
	assert.Equal(t, "TEST", report.Symbol)
	assert.Equal(t, 200, report.SimulationsRun)
	assert.Equal(t, 20, report.DaysSimulated)
	assert.Equal(t, "^INDIAVIX", report.VixIndexUsed)
	assert.Equal(t, 14.57, report.VixValue)
	assert.Equal(t, 8.0, report.ShockNu)
	assert.Equal(t, -0.2, report.ShockSkew)
	assert.Equal(t, 1, fitter.calls[ReportSpec])

	assert.LessOrEqual(t, report.Min, report.Percentile5)
	assert.LessOrEqual(t, report.Percentile5, report.Percentile95)
	assert.LessOrEqual(t, report.Percentile95, report.Max)

	require.Len(t, report.FinalInference, len(simulation.TargetPercents))
	for _, inf := range report.FinalInference {
		assert.True(t, inf.ProbabilityPercent >= 0 && inf.ProbabilityPercent <= 100)
	}

	chart, err := simulation.DecompressChart(report.CompressedChartData)
	require.NoError(t, err)
	assert.Len(t, chart.LineChart, 20)

	again, err := svc.Report(context.Background(), "TEST", testParams())
	require.NoError(t, err)
	assert.Equal(t, report.Mean, again.Mean)
	assert.Equal(t, report.FinalInference, again.FinalInference)
}

func TestReportBenchmarkUnavailable(t *testing.T) {
	svc := newTestService(&fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}, newFakeFitter(), fakeBenchmark{})

	report, err := svc.Report(context.Background(), "TEST", testParams())
	require.NoError(t, err)
	assert.Equal(t, "Unavailable", report.VixValue)
}

func TestReportFailures(t *testing.T) {
	fitter := newFakeFitter()
	fitter.fail[ReportSpec] = contracts.ErrModelFit
	svc := newTestService(&fakeFetcher{series: syntheticSeries(300, 0.0005, 0.02)}, fitter, nil)

	_, err := svc.Report(context.Background(), "TEST", testParams())
	assert.ErrorIs(t, err, contracts.ErrModelFit)

	svc = newTestService(&fakeFetcher{err: contracts.ErrNotFound}, newFakeFitter(), nil)
	_, err = svc.Report(context.Background(), "TEST", testParams())
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

// ============================================================================
// End to end with the maximum-likelihood fitter
// ============================================================================

func TestRunAllWithRealFitter(t *testing.T) {
	if testing.Short() {
		t.Skip("fits nine volatility models")
	}

	for _, n := range []int{300, 800, 1000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			history := syntheticSeries(n, 0.0005, 0.02)
			last, err := history.LastClose()
			require.NoError(t, err)

			svc := newTestService(&fakeFetcher{series: history}, volatility.NewFitter(), nil)
			resp, err := svc.RunAll(context.Background(), "TEST", contracts.SimulationParams{NumSimulations: 500, NumDays: 30, Seed: 7}, true)
			require.NoError(t, err)
			require.Len(t, resp.Results, 22)

			for _, e := range Catalogue() {
				o := resp.Results[e.Name]
				require.True(t, o.OK(), "%s: %v", e.Name, o.Err)
			}
			for _, name := range []string{"HISTORICAL", "MONTE-CARLO", "RISK-METRICS", "SIMPLE-VARIANCE"} {
				assert.InDelta(t, last, resp.Results[name].Result.Mean, last*0.2, name)
			}
		})
	}
}
