package force

import (
	"math"
	"math/rand"
)

// X pulls each node toward its TargetX.
type X struct {
	Strength float64
}

// Apply implements Force.
func (f X) Apply(nodes []Node, alpha float64, _ *rand.Rand) {
	for i := range nodes {
		nodes[i].VX += (nodes[i].TargetX - nodes[i].X) * f.Strength * alpha
	}
}

// Y pulls each node toward its TargetY.
type Y struct {
	Strength float64
}

// Apply implements Force.
func (f Y) Apply(nodes []Node, alpha float64, _ *rand.Rand) {
	for i := range nodes {
		nodes[i].VY += (nodes[i].TargetY - nodes[i].Y) * f.Strength * alpha
	}
}

// Collide pushes apart nodes closer than the sum of their radii. Radius
// overrides per-node radii when positive.
type Collide struct {
	Radius     float64
	Strength   float64
	Iterations int
}

func (f Collide) radius(n Node) float64 {
	if f.Radius > 0 {
		return f.Radius
	}
	return n.Radius
}

// Apply implements Force. Pairs are checked exhaustively; datasets here
// hold at most a few thousand points.
func (f Collide) Apply(nodes []Node, _ float64, rng *rand.Rand) {
	iters := f.Iterations
	if iters <= 0 {
		iters = 1
	}
	strength := f.Strength
	if strength == 0 {
		strength = 1
	}
	for k := 0; k < iters; k++ {
		for i := range nodes {
			a := &nodes[i]
			ri := f.radius(*a)
			ri2 := ri * ri
			xi := a.X + a.VX
			yi := a.Y + a.VY
			for j := i + 1; j < len(nodes); j++ {
				b := &nodes[j]
				rj := f.radius(*b)
				r := ri + rj
				x := xi - b.X - b.VX
				y := yi - b.Y - b.VY
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = jiggle(rng)
					l += x * x
				}
				if y == 0 {
					y = jiggle(rng)
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * strength
				x *= l
				y *= l
				rj2 := rj * rj
				share := rj2 / (ri2 + rj2)
				a.VX += x * share
				a.VY += y * share
				b.VX -= x * (1 - share)
				b.VY -= y * (1 - share)
			}
		}
	}
}
