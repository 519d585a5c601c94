package force

import "math/rand"

// Option configures a Simulation.
type Option func(*Simulation)

// WithForces adds forces applied in order each tick.
func WithForces(forces ...Force) Option {
	return func(s *Simulation) {
		s.forces = append(s.forces, forces...)
	}
}

// WithSeed makes collision jitter reproducible.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // layout jitter, not security
	}
}

// WithAlphaDecay overrides the per-tick alpha decay.
func WithAlphaDecay(d float64) Option {
	return func(s *Simulation) {
		s.alphaDecay = d
	}
}

// WithVelocityDecay overrides the per-tick velocity loss.
func WithVelocityDecay(d float64) Option {
	return func(s *Simulation) {
		s.velocityDecay = d
	}
}

// OnTick registers a callback run after every tick.
func OnTick(fn func(tick int, nodes []Node)) Option {
	return func(s *Simulation) {
		s.onTick = fn
	}
}

// OnEnd registers a callback run once the iteration budget is spent.
func OnEnd(fn func(nodes []Node)) Option {
	return func(s *Simulation) {
		s.onEnd = fn
	}
}
