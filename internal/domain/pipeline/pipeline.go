package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/labviz/internal/domain/dedupe"
	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/schema"
	"github.com/okian/labviz/pkg/logger"
	"github.com/okian/labviz/pkg/metrics"
	"github.com/okian/labviz/pkg/telemetry"
)

// Source reads one raw table.
type Source interface {
	Load(ctx context.Context) (model.Table, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (model.Table, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (model.Table, error) { return f(ctx) }

// Definition is everything needed to turn a source into a dataset.
type Definition struct {
	Name    string
	Title   string
	Schema  *schema.Schema
	Filters []Predicate
	// Limit keeps the first Limit records after filtering. Zero keeps all.
	Limit int
}

// Pipeline runs one Definition against one Source.
type Pipeline struct {
	def        Definition
	src        Source
	keep       func(model.NormalizedRecord) bool
	reporter   DropReporter
	dedupeOpts []dedupe.Option
	log        logger.Logger
}

// New validates def and builds a Pipeline.
func New(def Definition, src Source, opts ...Option) (*Pipeline, error) {
	if def.Name == "" || def.Schema == nil || src == nil {
		return nil, fmt.Errorf("%w: name, schema and source are required", ErrInvalidDefinition)
	}
	if err := def.Schema.Compile(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	keep, err := Compile(def.Filters)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		def:      def,
		src:      src,
		keep:     keep,
		reporter: Discard,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the dataset name.
func (p *Pipeline) Name() string { return p.def.Name }

// Load reads src inside a traced, timed stage.
func Load(ctx context.Context, lab string, src Source) (model.Table, error) {
	ctx, span := telemetry.Start(ctx, "pipeline.load", attribute.String("lab", lab))
	start := time.Now()
	t, err := src.Load(ctx)
	metrics.RecordPipelineStage("load", msSince(start))
	span.SetAttributes(attribute.Int("records", len(t.Records)))
	telemetry.End(span, err)
	return t, err
}

// Run loads, normalizes, deduplicates, filters and limits the source.
//
// The returned dataset is never nil. When the source is unreachable it is
// empty; when the source is malformed it holds what was read before the
// fault. In both cases the error is also returned and recorded in the
// dataset's diagnostics.
func (p *Pipeline) Run(ctx context.Context) (*model.Dataset, error) {
	name := p.def.Name
	ctx, span := telemetry.Start(ctx, "pipeline.run", attribute.String("lab", name))
	var runErr error
	defer func() { telemetry.End(span, runErr) }()

	ds := &model.Dataset{
		Name:  name,
		Title: p.def.Title,
		Diag:  model.Diagnostics{Dropped: map[string]int{}},
	}
	defer func() { ds.LoadedAt = time.Now().UTC() }()

	tbl, loadErr := Load(ctx, name, p.src)
	ds.Columns = tbl.Columns
	ds.Diag.Read = len(tbl.Records)
	metrics.RecordRecordsLoaded(name, len(tbl.Records))
	if loadErr != nil {
		runErr = loadErr
		ds.Diag.LoadError = loadErr.Error()
		metrics.RecordDatasetError(name)
		if len(tbl.Records) == 0 {
			return ds, loadErr
		}
	}

	if len(tbl.Records) > 0 {
		if err := p.def.Schema.CheckHeader(tbl.Columns); err != nil {
			runErr = err
			ds.Diag.LoadError = err.Error()
			metrics.RecordDatasetError(name)
			return ds, err
		}
	}

	start := time.Now()
	report := DropReporterFunc(func(ctx context.Context, d Drop) {
		ds.Diag.Dropped[d.Reason]++
		p.reporter.ReportDrop(ctx, d)
	})
	normalized, err := Normalize(ctx, name, tbl.Records, p.def.Schema, report)
	if err != nil {
		runErr = err
		return ds, err
	}
	metrics.RecordPipelineStage("normalize", msSince(start))

	start = time.Now()
	before := len(normalized)
	deduped := Dedupe(ctx, normalized, func(r model.NormalizedRecord) (string, bool) {
		return p.def.Schema.KeyOf(r.Raw)
	}, dedupe.NewInMemoryDeduper(append([]dedupe.Option{dedupe.WithCapacity(before)}, p.dedupeOpts...)...))
	ds.Diag.Duplicates = before - len(deduped)
	metrics.RecordRecordDuplicates(name, ds.Diag.Duplicates)
	metrics.RecordPipelineStage("dedupe", msSince(start))

	start = time.Now()
	filtered := Filter(deduped, p.keep)
	ds.Diag.Filtered = len(deduped) - len(filtered)
	metrics.RecordPipelineStage("filter", msSince(start))

	ds.Records = Limit(filtered, p.def.Limit)

	p.log.Info(ctx, "dataset ready",
		logger.String("lab", name),
		logger.Int("read", ds.Diag.Read),
		logger.Int("records", len(ds.Records)),
		logger.Int("dropped", ds.Diag.DroppedTotal()),
		logger.Int("duplicates", ds.Diag.Duplicates),
		logger.Int("filtered", ds.Diag.Filtered),
	)
	span.SetAttributes(attribute.Int("records", len(ds.Records)))
	return ds, loadErr
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
