// Package layout places normalized records in a viewport. Compute is a pure
// function of its arguments and returns a fresh Layout on every call.
package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/labviz/internal/domain/force"
	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/pipeline"
	"github.com/okian/labviz/internal/domain/scale"
)

const defaultTicks = 10

// Layout is the result of one render pass.
type Layout struct {
	Viewport   Viewport             `json:"viewport"`
	Padding    Padding              `json:"padding"`
	XScale     scale.Scale          `json:"-"`
	YScale     scale.Scale          `json:"-"`
	XTicks     []scale.Tick         `json:"x_ticks,omitempty"`
	YTicks     []scale.Tick         `json:"y_ticks,omitempty"`
	Points     []model.DisplayPoint `json:"points"`
	Iterations int                  `json:"iterations,omitempty"`
	// Skipped counts records with no value for an encoded field.
	Skipped int `json:"skipped,omitempty"`
}

// Compute maps records into vp using cfg. Records lacking an encoded value
// are left out. When cfg.Relax is set, a collision pass spreads the points.
func Compute(ctx context.Context, records []model.NormalizedRecord, cfg Config, vp Viewport) (Layout, error) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return Layout{}, fmt.Errorf("%w: %gx%g", ErrInvalidViewport, vp.Width, vp.Height)
	}
	p := cfg.Padding
	xs, err := buildScale(records, cfg.X, p.Left, vp.Width-p.Right)
	if err != nil {
		return Layout{}, fmt.Errorf("x: %w", err)
	}
	ys, err := buildScale(records, cfg.Y, vp.Height-p.Bottom, p.Top)
	if err != nil {
		return Layout{}, fmt.Errorf("y: %w", err)
	}

	out := Layout{Viewport: vp, Padding: p, XScale: xs, YScale: ys}
	ticks := cfg.Ticks
	if ticks == 0 {
		ticks = defaultTicks
	}
	if xs != nil {
		out.XTicks = xs.Ticks(ticks)
	}
	if ys != nil {
		out.YTicks = ys.Ticks(ticks)
	}

	out.Points = make([]model.DisplayPoint, 0, len(records))
	for _, r := range records {
		x, okX := position(r, cfg.X, xs, vp.Width/2)
		y, okY := position(r, cfg.Y, ys, vp.Height/2)
		if !okX || !okY {
			out.Skipped++
			continue
		}
		out.Points = append(out.Points, model.DisplayPoint{Record: r, X: x, Y: y, R: cfg.Radius})
	}

	if cfg.Relax != nil && len(out.Points) > 0 {
		n, err := relax(ctx, out.Points, *cfg.Relax, cfg.Radius, vp)
		out.Iterations = n
		if err != nil {
			return Layout{}, err
		}
	}
	return out, nil
}

func relax(ctx context.Context, points []model.DisplayPoint, rc Relaxation, radius float64, vp Viewport) (int, error) {
	nodes := make([]force.Node, len(points))
	for i, pt := range points {
		nodes[i] = force.Node{X: pt.X, Y: pt.Y, TargetX: pt.X, TargetY: pt.Y, Radius: radius}
		if rc.Init == InitCentroid {
			nodes[i].X, nodes[i].Y = vp.Width/2, vp.Height/2
		}
	}
	strength := rc.Strength
	if strength == 0 {
		strength = 0.1
	}
	collide := rc.CollideRadius
	if collide == 0 {
		collide = radius
	}
	sim := force.New(nodes,
		force.WithSeed(rc.Seed),
		force.WithForces(
			force.X{Strength: strength},
			force.Y{Strength: strength},
			force.Collide{Radius: collide, Strength: 1},
		),
	)
	n, err := sim.Run(ctx, rc.Iterations)
	if err != nil {
		return n, err
	}
	for i, nd := range sim.Nodes() {
		points[i].X, points[i].Y = nd.X, nd.Y
	}
	return n, nil
}

func position(r model.NormalizedRecord, enc Encoding, s scale.Scale, center float64) (float64, bool) {
	if enc.Constant == ConstantCenter || s == nil {
		return center, true
	}
	if ps, ok := s.(scale.Point); ok {
		t, has := r.Text(enc.Field)
		if !has {
			return 0, false
		}
		return ps.Position(t)
	}
	v, ok := r.Value(enc.Field)
	if !ok {
		return 0, false
	}
	return s.Map(v)
}

// buildScale derives a scale's domain from the records. A constant
// encoding has no scale unless it also names a field, in which case the
// scale only drives the axis.
func buildScale(records []model.NormalizedRecord, enc Encoding, r0, r1 float64) (scale.Scale, error) {
	if enc.Constant != "" {
		if enc.Constant != ConstantCenter {
			return nil, fmt.Errorf("%w: unknown constant %q", ErrInvalidEncoding, enc.Constant)
		}
		if enc.Field == "" {
			return nil, nil
		}
	}
	if enc.Field == "" {
		return nil, fmt.Errorf("%w: field is required", ErrInvalidEncoding)
	}
	field := enc.Field

	switch enc.Scale {
	case scale.KindLinear, "":
		lo, hi, ok := pipeline.Extent(records, func(r model.NormalizedRecord) (float64, bool) {
			v, has := r.Value(field)
			if !has {
				return 0, false
			}
			return v.Float()
		})
		if !ok {
			lo, hi = 0, 1
		}
		s := scale.NewLinear(lo, hi, r0, r1)
		if enc.Nice {
			s = s.Nice(defaultTicks)
		}
		return s, nil
	case scale.KindTime:
		lo, hi, _ := pipeline.TimeExtent(records, func(r model.NormalizedRecord) (time.Time, bool) {
			return r.Time(field)
		})
		return scale.NewTime(lo, hi, r0, r1), nil
	case scale.KindPoint:
		present := pipeline.Filter(records, func(r model.NormalizedRecord) bool {
			_, ok := r.Text(field)
			return ok
		})
		g := pipeline.Group(present, func(r model.NormalizedRecord) string {
			s, _ := r.Text(field)
			return s
		})
		return scale.NewPoint(g.Keys, r0, r1, 0.5), nil
	default:
		return nil, fmt.Errorf("%w: unknown scale %q", ErrInvalidEncoding, enc.Scale)
	}
}
