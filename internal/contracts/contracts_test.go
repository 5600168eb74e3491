package contracts

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceSeries_Normalize(t *testing.T) {
	s := &PriceSeries{
		Symbol: "TCS",
		Bars: []PriceBar{
			{Date: day(3), Close: 103},
			{Date: day(1), Close: 101},
			{Date: day(2), Close: 0},
			{Date: day(3).Add(2 * time.Hour), Close: 104},
		},
	}

	s.Normalize()
	require.NoError(t, s.Validate())
	assert.Equal(t, []float64{101, 104}, s.Closes())

	last, err := s.LastClose()
	require.NoError(t, err)
	assert.Equal(t, 104.0, last)
}

func TestPriceSeries_ValidateEmpty(t *testing.T) {
	s := &PriceSeries{Symbol: "NOPE"}
	assert.True(t, errors.Is(s.Validate(), ErrNotFound))

	_, err := s.LastClose()
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNormalizeHoldings(t *testing.T) {
	tests := []struct {
		name    string
		in      []Holding
		want    []Holding
		wantErr bool
	}{
		{
			name: "trim upper and merge",
			in: []Holding{
				{Symbol: " reliance ", Quantity: 10},
				{Symbol: "TCS", Quantity: 5},
				{Symbol: "RELIANCE", Quantity: 2.5},
			},
			want: []Holding{
				{Symbol: "RELIANCE", Quantity: 12.5},
				{Symbol: "TCS", Quantity: 5},
			},
		},
		{name: "empty", in: nil, wantErr: true},
		{name: "zero quantity", in: []Holding{{Symbol: "TCS", Quantity: 0}}, wantErr: true},
		{name: "blank symbol", in: []Holding{{Symbol: "  ", Quantity: 1}}, wantErr: true},
		{name: "too many", in: make([]Holding, MaxHoldings+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHoldings(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimulationParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  SimulationParams
		wantErr bool
	}{
		{"defaults", SimulationParams{NumSimulations: DefaultSimulations, NumDays: DefaultDays}, false},
		{"lower bounds", SimulationParams{NumSimulations: 100, NumDays: 1}, false},
		{"upper bounds", SimulationParams{NumSimulations: 10000, NumDays: 1000}, false},
		{"too few sims", SimulationParams{NumSimulations: 99, NumDays: 10}, true},
		{"too many sims", SimulationParams{NumSimulations: 10001, NumDays: 10}, true},
		{"zero days", SimulationParams{NumSimulations: 100, NumDays: 0}, true},
		{"too many days", SimulationParams{NumSimulations: 100, NumDays: 1001}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPortfolioParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultPortfolioParams().Validate())

	tests := []struct {
		name   string
		mutate func(p *PortfolioParams)
	}{
		{"sims below", func(p *PortfolioParams) { p.NumSimulations = 999 }},
		{"sims above", func(p *PortfolioParams) { p.NumSimulations = 100001 }},
		{"days above", func(p *PortfolioParams) { p.NumDays = 253 }},
		{"confidence below", func(p *PortfolioParams) { p.ConfidenceLevel = 0.89 }},
		{"confidence above", func(p *PortfolioParams) { p.ConfidenceLevel = 0.9995 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPortfolioParams()
			tt.mutate(&p)
			assert.True(t, errors.Is(p.Validate(), ErrValidation))
		})
	}
}
