// Package trend renders per-group time series as a line chart.
package trend

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	chart "github.com/wcharczuk/go-chart/v2"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/pipeline"
)

var (
	// ErrInvalidOptions is returned when required chart fields are missing.
	ErrInvalidOptions = errors.New("invalid trend options")
	// ErrNoSeries is returned when no group has two or more points.
	ErrNoSeries = errors.New("no series with at least two points")
)

// Defaults used when Options leaves a size unset.
const (
	DefaultWidth  = 960
	DefaultHeight = 480
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options selects the grouping and axis fields.
type Options struct {
	Group  string `yaml:"group" json:"group" validate:"required"`
	X      string `yaml:"x" json:"x" validate:"required"`
	Y      string `yaml:"y" json:"y" validate:"required"`
	Title  string `yaml:"title,omitempty" json:"title,omitempty"`
	Width  int    `yaml:"width,omitempty" json:"width,omitempty" validate:"gte=0"`
	Height int    `yaml:"height,omitempty" json:"height,omitempty" validate:"gte=0"`
	// Layout formats x labels for date axes. Empty means "2006".
	Layout string `yaml:"layout,omitempty" json:"layout,omitempty"`
}

type sample struct {
	t time.Time
	x float64
	y float64
}

// Series builds one series per group key in first-seen order. Groups with
// fewer than two plotted points are skipped.
func Series(records []model.NormalizedRecord, opts Options) []chart.Series {
	keyed := pipeline.Filter(records, func(r model.NormalizedRecord) bool {
		_, ok := r.Text(opts.Group)
		return ok
	})
	groups := pipeline.Group(keyed, func(r model.NormalizedRecord) string {
		k, _ := r.Text(opts.Group)
		return k
	})

	var out []chart.Series
	for _, key := range groups.Keys {
		samples, dated := collect(groups.Members[key], opts)
		if len(samples) < 2 {
			continue
		}
		style := chart.Style{
			StrokeColor: chart.GetDefaultColor(len(out)),
			StrokeWidth: 2,
			DotWidth:    3,
			DotColor:    chart.GetDefaultColor(len(out)),
		}
		ys := make([]float64, len(samples))
		for i, s := range samples {
			ys[i] = s.y
		}
		if dated {
			ts := make([]time.Time, len(samples))
			for i, s := range samples {
				ts[i] = s.t
			}
			out = append(out, chart.TimeSeries{Name: key, XValues: ts, YValues: ys, Style: style})
			continue
		}
		xs := make([]float64, len(samples))
		for i, s := range samples {
			xs[i] = s.x
		}
		out = append(out, chart.ContinuousSeries{Name: key, XValues: xs, YValues: ys, Style: style})
	}
	return out
}

// collect pulls (x, y) pairs ordered by x. dated reports a date x axis.
func collect(members []model.NormalizedRecord, opts Options) ([]sample, bool) {
	samples := make([]sample, 0, len(members))
	dated := false
	for _, r := range members {
		y, ok := r.Number(opts.Y)
		if !ok {
			continue
		}
		v, ok := r.Value(opts.X)
		if !ok {
			continue
		}
		x, ok := v.Float()
		if !ok {
			continue
		}
		if v.Kind == model.KindDate {
			dated = true
		}
		samples = append(samples, sample{t: v.Time, x: x, y: y})
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].x < samples[j].x })
	return samples, dated
}

// Render writes the trend chart for records as SVG.
func Render(w io.Writer, records []model.NormalizedRecord, opts Options) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	series := Series(records, opts)
	if len(series) == 0 {
		return ErrNoSeries
	}

	width, height := opts.Width, opts.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	format := opts.Layout
	if format == "" {
		format = "2006"
	}

	xAxis := chart.XAxis{Name: opts.X}
	if _, ok := series[0].(chart.TimeSeries); ok {
		xAxis.ValueFormatter = chart.TimeValueFormatterWithFormat(format)
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: opts.Y},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render trend: %w", err)
	}
	return nil
}
