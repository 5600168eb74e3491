package simulation

import (
	"context"
	"fmt"

	"github.com/wonny/varlytics/internal/contracts"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// bootstrapChunk paths share one random stream
const bootstrapChunk = 256

// BootstrapRequest resamples historical simple returns with replacement
type BootstrapRequest struct {
	LastPrice float64
	Returns   []float64
	Days      int
	Paths     int
	Seed      uint64
	Stream    uint64
	Workers   int
	KeepPaths bool
}

// Bootstrap builds each path as LastPrice * cumprod(1 + sampled returns).
// Paths are split into fixed chunks with their own stream, so the result
// does not depend on the number of workers.
func Bootstrap(ctx context.Context, r BootstrapRequest) (*Paths, error) {
	if r.Days < 1 || r.Paths < 1 {
		return nil, fmt.Errorf("%w: days and paths must be positive", contracts.ErrValidation)
	}
	if len(r.Returns) == 0 {
		return nil, fmt.Errorf("%w: no historical returns to resample", contracts.ErrInsufficientData)
	}
	if !(r.LastPrice > 0) {
		return nil, fmt.Errorf("%w: last price must be positive", contracts.ErrInsufficientData)
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	var m *mat.Dense
	if r.KeepPaths {
		m = mat.NewDense(r.Days, r.Paths, nil)
	}
	terminal := make([]float64, r.Paths)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < r.Paths; start += bootstrapChunk {
		start := start
		end := start + bootstrapChunk
		if end > r.Paths {
			end = r.Paths
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := NewRand(r.Seed, substream(r.Stream, uint64(start/bootstrapChunk)))
			n := len(r.Returns)

			// Chunks write disjoint columns
			for s := start; s < end; s++ {
				price := r.LastPrice
				for d := 0; d < r.Days; d++ {
					price *= 1 + r.Returns[rng.IntN(n)]
					if m != nil {
						m.Set(d, s, price)
					}
				}
				terminal[s] = price
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Paths{Matrix: m, Terminal: terminal, Days: r.Days}, nil
}
