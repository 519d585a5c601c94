package service

import (
	"time"

	workerpool "github.com/okian/labviz/internal/adapters/mq/worker"
	repository "github.com/okian/labviz/internal/adapters/repository"
	"github.com/okian/labviz/internal/adapters/source"
	"github.com/okian/labviz/internal/lab"
	"github.com/okian/labviz/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLabsDir sets the directory holding lab manifests.
func WithLabsDir(dir string) Option {
	return func(s *Service) { s.labsDir = dir }
}

// WithManifests adds already parsed manifests.
func WithManifests(ms ...*lab.Manifest) Option {
	return func(s *Service) { s.extra = append(s.extra, ms...) }
}

// WithWorkerCount sets the number of render workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued render jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDefaultWidth sets the width used when a request names none.
func WithDefaultWidth(width float64) Option {
	return func(s *Service) {
		if width > 0 {
			s.defaultWidth = width
		}
	}
}

// WithMaxWidth caps the viewport width a request may ask for.
func WithMaxWidth(width float64) Option {
	return func(s *Service) {
		if width > 0 {
			s.maxWidth = width
		}
	}
}

// WithLoadTimeout bounds each lab's pipeline run.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithSink sets where render workers deliver results.
func WithSink(sink workerpool.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithStore replaces the dataset store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSourceOptions passes options to the source loader.
func WithSourceOptions(opts ...source.Option) Option {
	return func(s *Service) { s.sourceOpts = append(s.sourceOpts, opts...) }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
