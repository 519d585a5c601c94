// Package scale maps domain values to pixel positions and produces axis ticks.
package scale

import (
	"math"

	model "github.com/okian/labviz/internal/domain/model"
)

// Kind names a scale type in chart configuration.
type Kind string

// Scale kinds.
const (
	KindLinear Kind = "linear"
	KindTime   Kind = "time"
	KindPoint  Kind = "point"
)

// Tick is one axis tick: its domain value, pixel position and label.
type Tick struct {
	Value float64 `json:"value"`
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// Scale maps typed values to pixels.
type Scale interface {
	Kind() Kind
	Map(v model.Value) (float64, bool)
	Ticks(n int) []Tick
	Range() (float64, float64)
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// TickStep returns a 1, 2 or 5 times a power of ten step that splits
// [start, stop] into roughly count intervals.
func TickStep(start, stop float64, count int) float64 {
	if count <= 0 || start == stop {
		return 0
	}
	step0 := math.Abs(stop-start) / float64(count)
	power := math.Floor(math.Log10(step0))
	err := step0 / math.Pow(10, power)
	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	step := factor * math.Pow(10, power)
	if stop < start {
		return -step
	}
	return step
}

// TickValues returns the multiples of the tick step inside [start, stop].
func TickValues(start, stop float64, count int) []float64 {
	if start == stop {
		if count > 0 {
			return []float64{start}
		}
		return nil
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	step := TickStep(start, stop, count)
	if step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return nil
	}
	var out []float64
	if step >= 1 {
		lo, hi := math.Ceil(start/step), math.Floor(stop/step)
		for i := lo; i <= hi; i++ {
			out = append(out, i*step)
		}
	} else {
		// Dividing by the inverse keeps decimal steps exact.
		inv := math.Round(1 / step)
		lo, hi := math.Ceil(start*inv), math.Floor(stop*inv)
		for i := lo; i <= hi; i++ {
			out = append(out, i/inv)
		}
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
