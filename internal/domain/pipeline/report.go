package pipeline

import (
	"context"

	"github.com/okian/labviz/pkg/logger"
	"github.com/okian/labviz/pkg/metrics"
)

// Drop describes one record removed during normalization.
type Drop struct {
	Lab    string
	Index  int
	Reason string
	Field  string
	Err    error
}

// DropReporter receives every dropped record. Drops never reach the chart;
// reporting them is purely diagnostic.
type DropReporter interface {
	ReportDrop(ctx context.Context, d Drop)
}

// DropReporterFunc adapts a function to DropReporter.
type DropReporterFunc func(ctx context.Context, d Drop)

// ReportDrop calls f.
func (f DropReporterFunc) ReportDrop(ctx context.Context, d Drop) { f(ctx, d) }

// Discard ignores drops.
var Discard DropReporter = DropReporterFunc(func(context.Context, Drop) {})

type metricsReporter struct {
	log logger.Logger
}

// NewMetricsReporter counts drops per lab and reason and logs each at debug level.
func NewMetricsReporter(log logger.Logger) DropReporter {
	if log == nil {
		log = logger.Nop()
	}
	return &metricsReporter{log: log}
}

func (r *metricsReporter) ReportDrop(ctx context.Context, d Drop) {
	metrics.RecordRecordDropped(d.Lab, d.Reason)
	r.log.Debug(ctx, "record dropped",
		logger.String("lab", d.Lab),
		logger.Int("index", d.Index),
		logger.String("reason", d.Reason),
		logger.String("field", d.Field),
		logger.Error(d.Err),
	)
}
