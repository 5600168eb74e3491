package simulation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/volatility"
	"gonum.org/v1/gonum/mat"
)

func gbmRequest(days, paths int) Request {
	return Request{
		LastPrice: 100,
		Mean:      Constant(days, 0.1),
		Vol:       Constant(days, 0.2),
		Days:      days,
		Paths:     paths,
		Shocks:    NormalShocks{},
	}
}

func TestSimulateShape(t *testing.T) {
	p, err := Simulate(gbmRequest(30, 200), NewRand(1, 2))
	require.NoError(t, err)

	days, paths := p.Matrix.Dims()
	assert.Equal(t, 30, days)
	assert.Equal(t, 200, paths)
	assert.Equal(t, 200, p.Count())
	assert.Equal(t, mat.Row(nil, days-1, p.Matrix), p.Terminal)

	for _, v := range p.Matrix.RawMatrix().Data {
		assert.Greater(t, v, 0.0)
	}
}

func TestSimulateTerminalMatchesFullMatrix(t *testing.T) {
	full, err := Simulate(gbmRequest(40, 100), NewRand(9, 3))
	require.NoError(t, err)
	terminal, err := SimulateTerminal(gbmRequest(40, 100), NewRand(9, 3))
	require.NoError(t, err)

	assert.Nil(t, terminal.Matrix)
	assert.Equal(t, full.Terminal, terminal.Terminal)

	other, err := SimulateTerminal(gbmRequest(40, 100), NewRand(9, 4))
	require.NoError(t, err)
	assert.NotEqual(t, full.Terminal, other.Terminal, "different streams differ")
}

func TestSimulateZeroVolatility(t *testing.T) {
	r := Request{
		LastPrice:      50,
		Mean:           Constant(10, 0.252),
		Vol:            Constant(10, 0),
		Days:           10,
		Paths:          3,
		Shocks:         NormalShocks{},
		NoVarianceDrag: true,
	}
	p, err := Simulate(r, NewRand(1, 1))
	require.NoError(t, err)

	for d := 0; d < 10; d++ {
		want := 50 * math.Exp(0.001*float64(d+1))
		for s := 0; s < 3; s++ {
			assert.InDelta(t, want, p.Matrix.At(d, s), 1e-9)
		}
	}
}

// Terminal mean of a GBM with daily drift mu*dt after 252 steps is last*exp(mu)
func TestSimulateGBMTerminalMean(t *testing.T) {
	if testing.Short() {
		t.Skip("large simulation")
	}
	p, err := SimulateTerminal(gbmRequest(TradingDays, 20000), NewRand(2024, 1))
	require.NoError(t, err)

	summary := Summarize(p.Terminal)
	assert.InDelta(t, 100*math.Exp(0.1), summary.Mean, 0.7)
}

// Daily estimates are scaled by dt as well, so a daily drift of 0.0005 over
// 252 steps moves the mean by exp(0.0005), not by exp(252*0.0005).
func TestSimulateDailyDriftIsScaledByDt(t *testing.T) {
	if testing.Short() {
		t.Skip("large simulation")
	}
	r := Request{
		LastPrice: 100,
		Mean:      Constant(TradingDays, 0.0005),
		Vol:       Constant(TradingDays, 0.02),
		Days:      TradingDays,
		Paths:     20000,
		Shocks:    NormalShocks{},
	}
	p, err := SimulateTerminal(r, NewRand(77, 3))
	require.NoError(t, err)

	summary := Summarize(p.Terminal)
	assert.InDelta(t, 100*math.Exp(0.0005), summary.Mean, 0.1)
	assert.Less(t, summary.Mean, 100*math.Exp(TradingDays*0.0005)-10)
}

func TestSimulateValidation(t *testing.T) {
	r := gbmRequest(10, 10)
	r.Days = 0
	_, err := Simulate(r, NewRand(1, 1))
	assert.True(t, errors.Is(err, contracts.ErrValidation))

	r = gbmRequest(10, 10)
	r.Mean = Constant(9, 0)
	_, err = Simulate(r, NewRand(1, 1))
	assert.True(t, errors.Is(err, contracts.ErrInternal))

	r = gbmRequest(10, 10)
	r.LastPrice = 0
	_, err = SimulateTerminal(r, NewRand(1, 1))
	assert.True(t, errors.Is(err, contracts.ErrInsufficientData))

	r = gbmRequest(10, 10)
	r.Shocks = nil
	_, err = SimulateTerminal(r, NewRand(1, 1))
	assert.True(t, errors.Is(err, contracts.ErrInternal))
}

func TestBootstrapIndependentOfWorkers(t *testing.T) {
	returns := []float64{-0.02, -0.01, 0, 0.005, 0.01, 0.03}
	req := BootstrapRequest{
		LastPrice: 250, Returns: returns, Days: 20, Paths: 1000,
		Seed: 11, Stream: 5, Workers: 1, KeepPaths: true,
	}

	one, err := Bootstrap(context.Background(), req)
	require.NoError(t, err)
	req.Workers = 6
	six, err := Bootstrap(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, one.Terminal, six.Terminal)
	assert.True(t, mat.Equal(one.Matrix, six.Matrix))
	assert.Equal(t, mat.Row(nil, 19, one.Matrix), one.Terminal)

	req.KeepPaths = false
	terminalOnly, err := Bootstrap(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, terminalOnly.Matrix)
	assert.Equal(t, one.Terminal, terminalOnly.Terminal)
}

func TestBootstrapConstantReturn(t *testing.T) {
	p, err := Bootstrap(context.Background(), BootstrapRequest{
		LastPrice: 100, Returns: []float64{0.01}, Days: 5, Paths: 3, Seed: 1, Workers: 2,
	})
	require.NoError(t, err)
	for _, v := range p.Terminal {
		assert.InDelta(t, 100*math.Pow(1.01, 5), v, 1e-9)
	}
}

func TestBootstrapValidation(t *testing.T) {
	_, err := Bootstrap(context.Background(), BootstrapRequest{LastPrice: 100, Days: 5, Paths: 3})
	assert.True(t, errors.Is(err, contracts.ErrInsufficientData))

	_, err = Bootstrap(context.Background(), BootstrapRequest{LastPrice: 100, Returns: []float64{0.1}, Days: 0, Paths: 3})
	assert.True(t, errors.Is(err, contracts.ErrValidation))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Bootstrap(ctx, BootstrapRequest{LastPrice: 100, Returns: []float64{0.1}, Days: 5, Paths: 3})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{90, 100, 110, 94})
	assert.Equal(t, Summary{Mean: 98.5, Min: 90, Max: 110, PMin: 0.5, PMax: 0.25}, s)

	assert.Equal(t, s, Summarize([]float64{90, 100, 110, 94}))
	assert.Equal(t, Summary{}, Summarize(nil))

	s = Summarize([]float64{10.123, 10.127})
	assert.Equal(t, 10.13, s.Max)
	assert.Equal(t, 10.12, s.Min)
	assert.Equal(t, 1.0, s.PMin)
	assert.Equal(t, 1.0, s.PMax)
}

func TestTerminalPercentile(t *testing.T) {
	terminal := []float64{120, 80, 100, 90, 110}
	assert.InDelta(t, 82, TerminalPercentile(terminal, 5), 1e-9)
	assert.InDelta(t, 118, TerminalPercentile(terminal, 95), 1e-9)
	assert.Equal(t, 120.0, terminal[0])
}

func TestInferTargetsEarlyHits(t *testing.T) {
	// days x paths
	m := mat.NewDense(3, 2, []float64{
		99, 101,
		97, 103,
		89, 111,
	})
	got := InferTargets(m, 100)
	require.Len(t, got, len(TargetPercents))

	byPct := map[float64]TargetInference{}
	for i, pct := range TargetPercents {
		byPct[pct] = got[i]
	}

	down2 := byPct[-2]
	assert.Equal(t, 98.0, down2.TargetPrice)
	assert.Equal(t, -2.0, down2.ChangePercent)
	assert.Equal(t, DirectionDownside, down2.Direction)
	assert.Equal(t, 50.0, down2.ProbabilityPercent)
	require.NotNil(t, down2.AverageDayToHit)
	assert.Equal(t, 1, *down2.AverageDayToHit)
	assert.Equal(t, "~50.0% chance of touching 98.0 during the simulation period. On average, this happens around day 1.", down2.Description)

	up10 := byPct[10]
	assert.Equal(t, 110.0, up10.TargetPrice)
	assert.Equal(t, DirectionUpside, up10.Direction)
	require.NotNil(t, up10.AverageDayToHit)
	assert.Equal(t, 2, *up10.AverageDayToHit)
}

func TestInferTargetsNarratives(t *testing.T) {
	// one path in ten falls 20% on day 1
	data := make([]float64, 2*10)
	for i := range data {
		data[i] = 100
	}
	data[10] = 80
	rare := InferTargets(mat.NewDense(2, 10, data), 100)

	down10 := rare[0]
	assert.Equal(t, 10.0, down10.ProbabilityPercent)
	assert.Nil(t, down10.AverageDayToHit)
	assert.Equal(t, "~10.0% chance of touching 90.0 during the simulation period. But it rarely occurs in most simulations.", down10.Description)

	up10 := rare[len(rare)-1]
	assert.Zero(t, up10.ProbabilityPercent)
	assert.Nil(t, up10.AverageDayToHit)
	assert.Equal(t, "~0.0% chance of touching 110.0 during the simulation period.", up10.Description)

	// half the paths reach the target only on the last of 10 days
	late := mat.NewDense(10, 2, nil)
	for d := 0; d < 10; d++ {
		late.Set(d, 0, 100)
		late.Set(d, 1, 100)
	}
	late.Set(9, 0, 120)
	lateUp := InferTargets(late, 100)[len(TargetPercents)-1]
	assert.Equal(t, 50.0, lateUp.ProbabilityPercent)
	assert.Nil(t, lateUp.AverageDayToHit)
	assert.Contains(t, lateUp.Description, "usually occurs late in the simulation period")
}

func TestHistogram(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := Histogram(values, 3)
	assert.Equal(t, []HistogramBin{{Bin: 2.5, Count: 3}, {Bin: 5.5, Count: 3}, {Bin: 8.5, Count: 4}}, got)

	flat := Histogram([]float64{5, 5, 5}, 2)
	assert.Equal(t, []HistogramBin{{Bin: 4.75, Count: 0}, {Bin: 5.25, Count: 3}}, flat)

	assert.Nil(t, Histogram(nil, 30))
}

func TestBuildChart(t *testing.T) {
	p, err := Simulate(gbmRequest(5, 60), NewRand(3, 3))
	require.NoError(t, err)

	c, err := BuildChart(p.Matrix)
	require.NoError(t, err)

	require.Len(t, c.LineChart, 5)
	for d, row := range c.LineChart {
		assert.Len(t, row, ChartSamplePaths+1)
		assert.Equal(t, float64(d+1), row["x"])
		assert.Equal(t, p.Matrix.At(d, 49), row["y49"])
	}

	require.Len(t, c.Histogram, ChartBins)
	total := 0
	for _, b := range c.Histogram {
		total += b.Count
	}
	assert.Equal(t, 60, total)

	_, err = BuildChart(nil)
	assert.Error(t, err)
}

func TestCompressChartRoundTrip(t *testing.T) {
	p, err := Simulate(gbmRequest(4, 10), NewRand(5, 5))
	require.NoError(t, err)
	c, err := BuildChart(p.Matrix)
	require.NoError(t, err)

	encoded, err := CompressChart(c)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	decoded, err := DecompressChart(encoded)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)

	_, err = DecompressChart("not base64!")
	assert.Error(t, err)
}

func TestShocksFor(t *testing.T) {
	assert.IsType(t, NormalShocks{}, ShocksFor(volatility.DistNormal, 0, 0))
	assert.IsType(t, SkewedNormalShocks{}, ShocksFor(volatility.DistNormal, -0.1, 0))
	assert.Equal(t, StudentTShocks{Nu: DefaultStudentTNu}, ShocksFor(volatility.DistStudentT, 0, 0))
	assert.IsType(t, SkewNormalShocks{}, ShocksFor(volatility.DistStudentT, -2, 5))
	assert.IsType(t, NormalShocks{}, ShocksFor(volatility.DistGED, 0, 1.5))
	assert.IsType(t, SkewNormalShocks{}, ShocksFor(volatility.DistGED, -1.5, 1.5))
	assert.Equal(t, SkewTShocks{Nu: 6, Skew: -0.2}, ShocksFor(volatility.DistSkewT, -0.2, 6))
}

func TestShockMoments(t *testing.T) {
	gens := map[string]ShockGenerator{
		"normal":   NormalShocks{},
		"skew":     SkewNormalShocks{Shape: 3},
		"students": StudentTShocks{Nu: 10},
		"skewt":    SkewTShocks{Nu: 8, Skew: 1},
	}
	for name, g := range gens {
		t.Run(name, func(t *testing.T) {
			dst := make([]float64, 50000)
			g.Fill(dst, NewRand(77, 1))
			for _, v := range dst {
				require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		})
	}

	dst := make([]float64, 100000)
	SkewNormalShocks{Shape: 3}.Fill(dst, NewRand(1, 9))
	// E = delta*sqrt(2/pi)
	delta := 3 / math.Sqrt(10)
	var sum float64
	for _, v := range dst {
		sum += v
	}
	assert.InDelta(t, delta*math.Sqrt(2/math.Pi), sum/float64(len(dst)), 0.01)
}

func TestRandStreams(t *testing.T) {
	a, b := NewRand(5, 1), NewRand(5, 1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotZero(t, ResolveSeed(0))
	assert.Equal(t, uint64(12), ResolveSeed(12))
	assert.NotEqual(t, substream(3, 0), substream(3, 1))
}
