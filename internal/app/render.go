package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/labviz/internal/domain/layout"
	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/types"
	"github.com/okian/labviz/internal/lab"
	"github.com/okian/labviz/internal/render/svg"
	"github.com/okian/labviz/internal/render/trend"
	"github.com/okian/labviz/pkg/metrics"
	"github.com/okian/labviz/pkg/telemetry"
)

// ErrNoTrend is returned for labs whose manifest declares no trend chart.
var ErrNoTrend = fmt.Errorf("%w: lab has no trend chart", types.ErrInvalidInput)

// width resolves a requested width: zero means the default, anything above
// the maximum is rejected.
func (s *Service) width(w float64) (float64, error) {
	switch {
	case w < 0:
		return 0, fmt.Errorf("%w: width %g is negative", types.ErrInvalidInput, w)
	case w == 0:
		return s.defaultWidth, nil
	case w > s.maxWidth:
		return 0, fmt.Errorf("%w: width %g exceeds %g", types.ErrInvalidInput, w, s.maxWidth)
	}
	return w, nil
}

func (s *Service) prepare(ctx context.Context, name string, width float64) (*lab.Manifest, *model.Dataset, layout.Viewport, error) {
	m, err := s.manifest(name)
	if err != nil {
		return nil, nil, layout.Viewport{}, err
	}
	ds, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, nil, layout.Viewport{}, err
	}
	w, err := s.width(width)
	if err != nil {
		return nil, nil, layout.Viewport{}, err
	}
	return m, ds, layout.Resize(m.Chart.Config, w), nil
}

// Layout places lab name's records in a viewport of the given width. The
// dataset is never reloaded.
func (s *Service) Layout(ctx context.Context, name string, width float64) (layout.Layout, error) {
	ctx, span := telemetry.Start(ctx, "render.layout", attribute.String("lab", name), attribute.Float64("width", width))
	var err error
	defer func() { telemetry.End(span, err) }()

	start := time.Now()
	m, ds, vp, err := s.prepare(ctx, name, width)
	if err != nil {
		return layout.Layout{}, err
	}
	l, err := layout.Compute(ctx, ds.Records, m.Chart.Config, vp)
	if err != nil {
		return layout.Layout{}, err
	}
	metrics.RecordRender("layout", msSince(start))
	if l.Iterations > 0 {
		metrics.RecordRelaxationIterations(l.Iterations)
	}
	return l, nil
}

// Chart renders lab name as SVG for a width and narrative section.
func (s *Service) Chart(ctx context.Context, name string, width float64, section string) (model.RenderResult, error) {
	ctx, span := telemetry.Start(ctx, "render.chart",
		attribute.String("lab", name), attribute.Float64("width", width), attribute.String("section", section))
	var err error
	defer func() { telemetry.End(span, err) }()

	start := time.Now()
	m, ds, vp, err := s.prepare(ctx, name, width)
	if err != nil {
		return model.RenderResult{}, err
	}
	l, err := layout.Compute(ctx, ds.Records, m.Chart.Config, vp)
	if err != nil {
		return model.RenderResult{}, err
	}
	if l.Iterations > 0 {
		metrics.RecordRelaxationIterations(l.Iterations)
	}
	out := svg.String(l, m.Style(section))
	metrics.RecordRender("chart", msSince(start))

	return model.RenderResult{
		Lab:     name,
		Section: section,
		Width:   vp.Width,
		Height:  vp.Height,
		SVG:     out,
	}, nil
}

// Trend renders the per-group trend chart of lab name. Group overrides the
// manifest's grouping field when set.
func (s *Service) Trend(ctx context.Context, name, group string, width int) ([]byte, error) {
	ctx, span := telemetry.Start(ctx, "render.trend", attribute.String("lab", name))
	var err error
	defer func() { telemetry.End(span, err) }()

	start := time.Now()
	m, err := s.manifest(name)
	if err != nil {
		return nil, err
	}
	if m.Trend == nil {
		err = ErrNoTrend
		return nil, err
	}
	ds, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if width < 0 || float64(width) > s.maxWidth {
		err = fmt.Errorf("%w: width %d", types.ErrInvalidInput, width)
		return nil, err
	}
	opts := *m.Trend
	if group != "" {
		opts.Group = group
	}
	if width > 0 {
		opts.Width = width
		opts.Height = width / 2
	}
	var buf bytes.Buffer
	if err = trend.Render(&buf, ds.Records, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	metrics.RecordRender("trend", msSince(start))
	return buf.Bytes(), nil
}

// Render implements the worker renderer for queued session jobs.
func (s *Service) Render(ctx context.Context, job model.RenderJob) (model.RenderResult, error) { //nolint:gocritic // hugeParam: jobs are values
	res, err := s.Chart(ctx, job.Lab, job.Width, job.Section)
	if err != nil {
		return model.RenderResult{}, err
	}
	res.JobID = job.ID
	res.Reason = job.Reason
	return res, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
