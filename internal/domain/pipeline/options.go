package pipeline

import (
	"github.com/okian/labviz/internal/domain/dedupe"
	"github.com/okian/labviz/pkg/logger"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter sets where dropped records are reported.
func WithReporter(r DropReporter) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.reporter = r
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithDeduperOptions configures the deduper created for each run.
func WithDeduperOptions(opts ...dedupe.Option) Option {
	return func(p *Pipeline) {
		p.dedupeOpts = append(p.dedupeOpts, opts...)
	}
}
