// Package force spreads overlapping points with a fixed-length velocity
// Verlet relaxation: attraction toward per-node targets plus pairwise
// collision.
package force

import (
	"context"
	"math"
	"math/rand"
)

// Node is one simulated point.
type Node struct {
	X, Y             float64
	VX, VY           float64
	TargetX, TargetY float64
	Radius           float64
}

// Force nudges node velocities once per tick.
type Force interface {
	Apply(nodes []Node, alpha float64, rng *rand.Rand)
}

// Defaults for the alpha schedule.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultIterations    = 300
)

// DefaultAlphaDecay takes alpha from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Simulation runs forces over nodes for a fixed number of ticks.
type Simulation struct {
	nodes         []Node
	forces        []Force
	alpha         float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	rng           *rand.Rand
	onTick        func(tick int, nodes []Node)
	onEnd         func(nodes []Node)
}

// New creates a simulation over a copy of nodes.
func New(nodes []Node, opts ...Option) *Simulation {
	s := &Simulation{
		nodes:         append([]Node(nil), nodes...),
		alpha:         1,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: DefaultVelocityDecay,
		rng:           rand.New(rand.NewSource(1)), //nolint:gosec // layout jitter, not security
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Nodes returns the current node state.
func (s *Simulation) Nodes() []Node { return s.nodes }

// Tick advances the simulation one step.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	for _, f := range s.forces {
		f.Apply(s.nodes, s.alpha, s.rng)
	}
	keep := 1 - s.velocityDecay
	for i := range s.nodes {
		n := &s.nodes[i]
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX
		n.Y += n.VY
	}
}

// Run ticks exactly iterations times, checking ctx between ticks. There is
// no convergence test. It returns the number of ticks completed.
func (s *Simulation) Run(ctx context.Context, iterations int) (int, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		s.Tick()
		if s.onTick != nil {
			s.onTick(i+1, s.nodes)
		}
	}
	if s.onEnd != nil {
		s.onEnd(s.nodes)
	}
	return iterations, nil
}

// jiggle returns a tiny random offset for separating coincident nodes.
func jiggle(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 1e-6
}
