// Package simulation generates Monte-Carlo price paths and reduces them to
// summary statistics, target-touch probabilities and chart payloads.
package simulation

import "math/rand/v2"

// NewRand returns the PCG stream identified by (seed, stream).
// Equal pairs always yield equal draws.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// ResolveSeed returns seed, or a fresh random seed when seed is 0
func ResolveSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return seed
}

// substream derives the k-th child stream of stream
func substream(stream, k uint64) uint64 {
	return stream*0x9E3779B97F4A7C15 + k + 1
}
