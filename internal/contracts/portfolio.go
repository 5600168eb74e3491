package contracts

import (
	"fmt"
	"strings"
)

// Holding limits
const (
	MinHoldings = 1
	MaxHoldings = 50
)

// Holding is one requested position
type Holding struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// NormalizeHoldings trims and upper-cases symbols, rejects non-positive
// quantities and merges duplicate symbols by summing their quantity.
// First-seen order is kept.
func NormalizeHoldings(holdings []Holding) ([]Holding, error) {
	if len(holdings) < MinHoldings {
		return nil, fmt.Errorf("%w: holdings list cannot be empty", ErrValidation)
	}
	if len(holdings) > MaxHoldings {
		return nil, fmt.Errorf("%w: at most %d holdings allowed, got %d", ErrValidation, MaxHoldings, len(holdings))
	}

	index := make(map[string]int, len(holdings))
	out := make([]Holding, 0, len(holdings))
	for i, h := range holdings {
		symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if symbol == "" {
			return nil, fmt.Errorf("%w: holding %d has an empty symbol", ErrValidation, i)
		}
		if !(h.Quantity > 0) {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", ErrValidation, symbol)
		}

		if pos, ok := index[symbol]; ok {
			out[pos].Quantity += h.Quantity
			continue
		}
		index[symbol] = len(out)
		out = append(out, Holding{Symbol: symbol, Quantity: h.Quantity})
	}

	return out, nil
}
