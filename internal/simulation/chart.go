package simulation

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/numfmt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Chart defaults
const (
	ChartSamplePaths = 50
	ChartBins        = 30
)

// HistogramBin is one terminal-price bucket
type HistogramBin struct {
	Bin   float64 `json:"bin"` // bucket centre
	Count int     `json:"count"`
}

// ChartData is the line chart of sample paths plus the terminal histogram.
// Each line row holds "x" (1-based day) and "y0".."yN" prices.
type ChartData struct {
	LineChart []map[string]float64 `json:"line_chart_data"`
	Histogram []HistogramBin       `json:"histogram_data"`
}

// BuildChart samples the first ChartSamplePaths paths and bins terminal prices
func BuildChart(m *mat.Dense) (*ChartData, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: chart needs the full path matrix", contracts.ErrInternal)
	}
	days, paths := m.Dims()
	samples := paths
	if samples > ChartSamplePaths {
		samples = ChartSamplePaths
	}

	keys := make([]string, samples)
	for s := range keys {
		keys[s] = "y" + strconv.Itoa(s)
	}

	line := make([]map[string]float64, days)
	for d := 0; d < days; d++ {
		row := make(map[string]float64, samples+1)
		row["x"] = float64(d + 1)
		for s := 0; s < samples; s++ {
			row[keys[s]] = m.At(d, s)
		}
		line[d] = row
	}

	return &ChartData{
		LineChart: line,
		Histogram: Histogram(mat.Row(nil, days-1, m), ChartBins),
	}, nil
}

// Histogram bins values into equal-width buckets over [min, max].
// The last bucket is closed; a degenerate range widens to min-0.5 .. max+0.5.
func Histogram(values []float64, bins int) []HistogramBin {
	if len(values) == 0 || bins < 1 {
		return nil
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	counts := make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		// float rounding near an edge
		for i > 0 && v < edges[i] {
			i--
		}
		for i < bins-1 && v >= edges[i+1] {
			i++
		}
		counts[i]++
	}

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{
			Bin:   numfmt.Price((edges[i] + edges[i+1]) / 2),
			Count: counts[i],
		}
	}
	return out
}

// CompressChart encodes chart data as base64(gzip(json))
func CompressChart(c *ChartData) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal chart: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("compress chart: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress chart: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecompressChart reverses CompressChart
func DecompressChart(encoded string) (*ChartData, error) {
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress chart: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress chart: %w", err)
	}

	var c ChartData
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal chart: %w", err)
	}
	return &c, nil
}
