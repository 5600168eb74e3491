package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/pkg/httputil"
	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/metrics"
)

// SourceYahoo is the metrics label of the Yahoo chart API
const SourceYahoo = "yahoo"

// DefaultYahooBaseURL is the public chart API host
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches daily bars from the Yahoo Finance chart API
type YahooClient struct {
	client   *httputil.Client
	baseURL  string
	resolver contracts.BenchmarkResolver
	logger   *logger.Logger
}

var _ contracts.HistoryFetcher = (*YahooClient)(nil)

// NewYahooClient creates a client against baseURL
func NewYahooClient(client *httputil.Client, baseURL string, log *logger.Logger) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooClient{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		resolver: Resolver{},
		logger:   log.WithField("module", "yahoo"),
	}
}

// yahooChart is the response structure of the chart API.
// Quote arrays hold null on non-trading rows.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func value(vs []*float64, i int) float64 {
	if i >= len(vs) || vs[i] == nil {
		return math.NaN()
	}
	return *vs[i]
}

func orElse(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}

// FetchHistory tries each candidate ticker of symbol and returns the first
// non-empty history
func (c *YahooClient) FetchHistory(ctx context.Context, symbol, period string) (*contracts.PriceSeries, error) {
	candidates := Candidates(c.resolver, symbol)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty symbol", contracts.ErrValidation)
	}

	var lastErr error
	for _, ticker := range candidates {
		bars, err := c.fetchChart(ctx, ticker, period)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"symbol": symbol,
				"ticker": ticker,
			}).Debug("Yahoo candidate failed")
			continue
		}

		series := &contracts.PriceSeries{Symbol: symbol, Resolved: ticker, Bars: bars}
		series.Normalize()
		if series.Len() == 0 {
			continue
		}
		metrics.HistoryFetches.WithLabelValues(SourceYahoo, metrics.OutcomeOK).Inc()
		return series, nil
	}

	metrics.HistoryFetches.WithLabelValues(SourceYahoo, metrics.OutcomeError).Inc()
	if lastErr != nil && !errors.Is(lastErr, contracts.ErrNotFound) {
		return nil, fmt.Errorf("%w: no historical data found for symbol '%s': %v", contracts.ErrNotFound, symbol, lastErr)
	}
	return nil, fmt.Errorf("%w: no historical data found for symbol '%s'", contracts.ErrNotFound, symbol)
}

func (c *YahooClient) fetchChart(ctx context.Context, ticker, period string) ([]contracts.PriceBar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s&events=history",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(period))

	var chart yahooChart
	if err := c.client.GetJSON(ctx, u, &chart); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", contracts.ErrNotFound, ticker)
		}
		return nil, fmt.Errorf("yahoo fetch %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo api error for %s: %s", contracts.ErrNotFound, ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no data for %s", contracts.ErrNotFound, ticker)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]contracts.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		// Calendar day in exchange local time
		local := time.Unix(ts+result.Meta.GMTOffset, 0).UTC()
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

		volume := value(quote.Volume, i)
		if math.IsNaN(volume) {
			volume = 0
		}
		closePrice := value(quote.Close, i)
		bars = append(bars, contracts.PriceBar{
			Date:   day,
			Open:   orElse(value(quote.Open, i), closePrice),
			High:   orElse(value(quote.High, i), closePrice),
			Low:    orElse(value(quote.Low, i), closePrice),
			Close:  closePrice,
			Volume: volume,
		})
	}

	return bars, nil
}
