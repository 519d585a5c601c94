package scale

import (
	"math"
	"time"

	model "github.com/okian/labviz/internal/domain/model"
)

// Time maps [D0, D1] onto [R0, R1].
type Time struct {
	D0, D1 time.Time
	R0, R1 float64
}

// NewTime builds a time scale.
func NewTime(d0, d1 time.Time, r0, r1 float64) Time {
	return Time{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Kind reports KindTime.
func (s Time) Kind() Kind { return KindTime }

// Range returns the pixel range.
func (s Time) Range() (float64, float64) { return s.R0, s.R1 }

func (s Time) linear() Linear {
	return NewLinear(float64(s.D0.UnixMilli()), float64(s.D1.UnixMilli()), s.R0, s.R1)
}

// Apply maps a time to pixels.
func (s Time) Apply(t time.Time) float64 {
	return s.linear().Apply(float64(t.UnixMilli()))
}

// Invert maps pixels back to a time.
func (s Time) Invert(px float64) time.Time {
	return time.UnixMilli(int64(math.Round(s.linear().Invert(px)))).UTC()
}

// Map maps dates. Numbers are read as Unix milliseconds.
func (s Time) Map(v model.Value) (float64, bool) {
	f, ok := v.Float()
	if !ok {
		return 0, false
	}
	return s.linear().Apply(f), true
}

type interval struct {
	unit   string
	step   int
	approx time.Duration
	layout string
}

const (
	day  = 24 * time.Hour
	week = 7 * day
	// Approximate lengths are only used to pick an interval.
	month = 30 * day
	year  = 365 * day
)

var intervals = []interval{
	{"second", 1, time.Second, "15:04:05"},
	{"second", 5, 5 * time.Second, "15:04:05"},
	{"second", 15, 15 * time.Second, "15:04:05"},
	{"second", 30, 30 * time.Second, "15:04:05"},
	{"minute", 1, time.Minute, "15:04"},
	{"minute", 5, 5 * time.Minute, "15:04"},
	{"minute", 15, 15 * time.Minute, "15:04"},
	{"minute", 30, 30 * time.Minute, "15:04"},
	{"hour", 1, time.Hour, "15:04"},
	{"hour", 3, 3 * time.Hour, "15:04"},
	{"hour", 6, 6 * time.Hour, "15:04"},
	{"hour", 12, 12 * time.Hour, "15:04"},
	{"day", 1, day, "Jan 02"},
	{"day", 2, 2 * day, "Jan 02"},
	{"week", 1, week, "Jan 02"},
	{"month", 1, month, "Jan"},
	{"month", 3, 3 * month, "Jan"},
}

// pick chooses the interval closest to target, falling back to years.
func pick(target time.Duration) (interval, bool) {
	for i, iv := range intervals {
		if target < iv.approx {
			if i == 0 {
				return iv, true
			}
			prev := intervals[i-1]
			if float64(target)/float64(prev.approx) < float64(iv.approx)/float64(target) {
				return prev, true
			}
			return iv, true
		}
	}
	return interval{}, false
}

// Ticks returns about n calendar-aligned ticks.
func (s Time) Ticks(n int) []Tick {
	if n <= 0 {
		return nil
	}
	lo, hi := s.D0.UTC(), s.D1.UTC()
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	if lo.Equal(hi) {
		return []Tick{{Value: float64(lo.UnixMilli()), Pos: s.Apply(lo), Label: lo.Format("2006")}}
	}

	target := hi.Sub(lo) / time.Duration(n)
	iv, ok := pick(target)
	if !ok || target > year*3/2 {
		return s.yearTicks(lo, hi, n)
	}

	var ticks []Tick
	for t := floor(lo, iv); !t.After(hi); t = advance(t, iv) {
		if t.Before(lo) {
			continue
		}
		label := t.Format(iv.layout)
		if iv.unit == "month" && t.Month() == time.January {
			label = t.Format("2006")
		}
		ticks = append(ticks, Tick{Value: float64(t.UnixMilli()), Pos: s.Apply(t), Label: label})
	}
	return ticks
}

func (s Time) yearTicks(lo, hi time.Time, n int) []Tick {
	step := int(math.Max(1, TickStep(float64(lo.Year()), float64(hi.Year()), n)))
	first := (lo.Year() + step - 1) / step * step
	if time.Date(first, 1, 1, 0, 0, 0, 0, time.UTC).Before(lo) {
		first += step
	}
	var ticks []Tick
	for y := first; ; y += step {
		t := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		if t.After(hi) {
			break
		}
		ticks = append(ticks, Tick{Value: float64(t.UnixMilli()), Pos: s.Apply(t), Label: t.Format("2006")})
	}
	return ticks
}

func floor(t time.Time, iv interval) time.Time {
	switch iv.unit {
	case "second", "minute", "hour":
		return t.Truncate(iv.approx)
	case "day":
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case "week":
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return d.AddDate(0, 0, -int(d.Weekday()))
	default:
		m := (int(t.Month()) - 1) / iv.step * iv.step
		return time.Date(t.Year(), time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)
	}
}

func advance(t time.Time, iv interval) time.Time {
	switch iv.unit {
	case "day":
		return t.AddDate(0, 0, iv.step)
	case "week":
		return t.AddDate(0, 0, 7)
	case "month":
		return t.AddDate(0, iv.step, 0)
	default:
		return t.Add(iv.approx)
	}
}
