package scale

import (
	"math"

	model "github.com/okian/labviz/internal/domain/model"
)

// Point spreads a categorical domain evenly over [R0, R1]. Padding is the
// outer gap in steps.
type Point struct {
	Domain  []string
	R0, R1  float64
	Padding float64

	index map[string]int
}

// NewPoint builds a point scale over domain in the given order.
func NewPoint(domain []string, r0, r1, padding float64) Point {
	idx := make(map[string]int, len(domain))
	for i, d := range domain {
		if _, ok := idx[d]; !ok {
			idx[d] = i
		}
	}
	return Point{Domain: domain, R0: r0, R1: r1, Padding: padding, index: idx}
}

// Kind reports KindPoint.
func (s Point) Kind() Kind { return KindPoint }

// Range returns the pixel range.
func (s Point) Range() (float64, float64) { return s.R0, s.R1 }

// Step returns the distance between adjacent points.
func (s Point) Step() float64 {
	n := float64(len(s.Domain))
	return (s.R1 - s.R0) / math.Max(1, n-1+2*s.Padding)
}

// Position returns the pixel position of a category.
func (s Point) Position(category string) (float64, bool) {
	i, ok := s.index[category]
	if !ok {
		return 0, false
	}
	n := float64(len(s.Domain))
	step := s.Step()
	start := s.R0 + (s.R1-s.R0-step*(n-1))/2
	return start + step*float64(i), true
}

// Map positions a value by its text.
func (s Point) Map(v model.Value) (float64, bool) {
	return s.Position(v.String())
}

// Ticks returns one tick per category. n is ignored.
func (s Point) Ticks(int) []Tick {
	ticks := make([]Tick, 0, len(s.Domain))
	for i, d := range s.Domain {
		if p, ok := s.Position(d); ok && s.index[d] == i {
			ticks = append(ticks, Tick{Value: float64(i), Pos: p, Label: d})
		}
	}
	return ticks
}
