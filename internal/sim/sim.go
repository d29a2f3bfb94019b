// Package sim implements the stochastic price walk that drives every
// session's locally simulated asset price.
//
// Each call is independent: the caller feeds the previous output back in
// as the next input to produce a random walk. The composition mimics
// market-like behavior — steady small moves, occasional larger shifts,
// and rare flash crashes/pumps — with a slight persistent upward drift.
//
// Randomness is plain math/rand; nothing here needs to be
// cryptographically secure. Tests inject a seeded *rand.Rand for
// reproducible walks.
package sim

import "math/rand"

const (
	// MinPrice is the hard floor applied after every step. Keeps the
	// walk strictly positive so valuation never divides by zero.
	MinPrice = 0.01

	baseVolatility = 0.04 // ±2% uniform

	rareMoveChance = 0.10
	rareMoveMin    = 0.03
	rareMoveMax    = 0.08

	extremeMoveChance = 0.01
	extremeMoveMin    = 0.08
	extremeMoveMax    = 0.15

	// trendCenter < 0.5 skews the uniform trend term positive,
	// ≈ +0.02% expected drift per tick.
	trendCenter = 0.48
	trendScale  = 0.01
)

// Simulator produces successive prices for a random walk.
// Not safe for concurrent use; each session owns its own Simulator.
type Simulator struct {
	rng *rand.Rand
}

// New creates a Simulator backed by the given random source.
func New(rng *rand.Rand) *Simulator {
	return &Simulator{rng: rng}
}

// NextPrice advances the walk one step from current.
// For any positive finite input the result is >= MinPrice.
func (s *Simulator) NextPrice(current float64) float64 {
	base := (s.rng.Float64() - 0.5) * baseVolatility

	var rare float64
	if s.rng.Float64() < rareMoveChance {
		rare = s.sign() * s.uniform(rareMoveMin, rareMoveMax)
	}

	var extreme float64
	if s.rng.Float64() < extremeMoveChance {
		extreme = s.sign() * s.uniform(extremeMoveMin, extremeMoveMax)
	}

	trend := (s.rng.Float64() - trendCenter) * trendScale

	next := current * (1 + base + rare + extreme + trend)
	if next < MinPrice {
		return MinPrice
	}
	return next
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Simulator) sign() float64 {
	if s.rng.Intn(2) == 0 {
		return 1
	}
	return -1
}
