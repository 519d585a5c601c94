package scale

import (
	"math"
	"strconv"
	"strings"

	model "github.com/okian/labviz/internal/domain/model"
)

// Linear maps [D0, D1] onto [R0, R1].
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinear builds a linear scale.
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Kind reports KindLinear.
func (s Linear) Kind() Kind { return KindLinear }

// Range returns the pixel range.
func (s Linear) Range() (float64, float64) { return s.R0, s.R1 }

// Apply maps a domain value to pixels. A degenerate domain maps everything
// to the middle of the range.
func (s Linear) Apply(x float64) float64 {
	d := s.D1 - s.D0
	t := 0.5
	if d != 0 {
		t = (x - s.D0) / d
	}
	return s.R0 + t*(s.R1-s.R0)
}

// Invert maps pixels back to the domain.
func (s Linear) Invert(px float64) float64 {
	r := s.R1 - s.R0
	if r == 0 {
		return (s.D0 + s.D1) / 2
	}
	return s.D0 + (px-s.R0)/r*(s.D1-s.D0)
}

// Map maps numbers and dates.
func (s Linear) Map(v model.Value) (float64, bool) {
	f, ok := v.Float()
	if !ok {
		return 0, false
	}
	return s.Apply(f), true
}

// Nice extends the domain to round tick values.
func (s Linear) Nice(count int) Linear {
	lo, hi := s.D0, s.D1
	reverse := hi < lo
	if reverse {
		lo, hi = hi, lo
	}
	var prev float64
	for i := 0; i < 10; i++ {
		step := TickStep(lo, hi, count)
		if step == prev || step == 0 {
			break
		}
		lo = math.Floor(lo/step) * step
		hi = math.Ceil(hi/step) * step
		prev = step
	}
	if reverse {
		lo, hi = hi, lo
	}
	s.D0, s.D1 = lo, hi
	return s
}

// Ticks returns about n ticks labelled with just enough decimals.
func (s Linear) Ticks(n int) []Tick {
	values := TickValues(s.D0, s.D1, n)
	step := math.Abs(TickStep(s.D0, s.D1, n))
	prec := 0
	if step > 0 {
		prec = int(math.Max(0, -math.Floor(math.Log10(step))))
	}
	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, Tick{Value: v, Pos: s.Apply(v), Label: FormatNumber(v, prec)})
	}
	return ticks
}

// FormatNumber formats v with prec decimals and comma thousands separators.
func FormatNumber(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
