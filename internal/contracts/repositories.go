package contracts

import (
	"context"
	"time"
)

// SSOT: repository interfaces are defined here only

// PriceRepository persists daily price bars per symbol
type PriceRepository interface {
	GetRange(ctx context.Context, symbol string, from, to time.Time) ([]PriceBar, error)
	SaveBatch(ctx context.Context, symbol string, bars []PriceBar) error
}
