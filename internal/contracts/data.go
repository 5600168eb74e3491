package contracts

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PriceBar is one daily OHLCV record
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is the date-ordered price history of one symbol
// SSOT: only produced by a HistoryFetcher, immutable afterwards
type PriceSeries struct {
	Symbol   string     `json:"symbol"`   // requested symbol
	Resolved string     `json:"resolved"` // symbol actually fetched (e.g. RELIANCE.NS)
	Bars     []PriceBar `json:"bars"`
}

// Len returns the number of bars
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// Closes returns the closing prices in date order
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// LastClose returns the most recent closing price
func (s *PriceSeries) LastClose() (float64, error) {
	if len(s.Bars) == 0 {
		return 0, fmt.Errorf("%w: %s has no price bars", ErrNotFound, s.Symbol)
	}
	return s.Bars[len(s.Bars)-1].Close, nil
}

// Normalize sorts bars by date, drops bars without a usable close and
// keeps the last bar of any duplicated trading day
func (s *PriceSeries) Normalize() {
	bars := make([]PriceBar, 0, len(s.Bars))
	for _, b := range s.Bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
			continue
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && DateKey(out[n-1].Date) == DateKey(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	s.Bars = out
}

// Validate checks the strictly increasing date invariant
func (s *PriceSeries) Validate() error {
	if len(s.Bars) == 0 {
		return fmt.Errorf("%w: no historical data for %s", ErrNotFound, s.Symbol)
	}
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("%w: %s dates not strictly increasing at %s",
				ErrInternal, s.Symbol, DateKey(s.Bars[i].Date))
		}
	}
	return nil
}

// DateKey returns the calendar day of t used to align series across symbols
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
