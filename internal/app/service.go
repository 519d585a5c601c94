// Package service loads every configured lab and implements the operations
// the HTTP and websocket surfaces depend on.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	renderqueue "github.com/okian/labviz/internal/adapters/mq/queue"
	workerpool "github.com/okian/labviz/internal/adapters/mq/worker"
	repository "github.com/okian/labviz/internal/adapters/repository"
	"github.com/okian/labviz/internal/adapters/source"
	"github.com/okian/labviz/internal/domain/events"
	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/pipeline"
	"github.com/okian/labviz/internal/domain/types"
	"github.com/okian/labviz/internal/lab"
	"github.com/okian/labviz/pkg/logger"
)

// Default service configuration.
const (
	defaultQueueSize    = 1024
	defaultWidth        = 960
	defaultMaxWidth     = 4096
	defaultLoadTimeout  = 30 * time.Second
	defaultLoadParallel = 4
)

// ErrNotStarted is returned by operations that need a started service.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for labviz.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	queue  renderqueue.Queue
	pool   *workerpool.Pool
	sink   workerpool.Sink
	loader *source.Loader

	manifests map[string]*lab.Manifest

	// Configuration
	labsDir      string
	extra        []*lab.Manifest
	workerCount  int
	queueSize    int
	defaultWidth float64
	maxWidth     float64
	loadTimeout  time.Duration
	sourceOpts   []source.Option

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		defaultWidth: defaultWidth,
		maxWidth:     defaultMaxWidth,
		loadTimeout:  defaultLoadTimeout,
		manifests:    make(map[string]*lab.Manifest),
		store:        repository.NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads every lab, then starts the render queue and worker pool. A
// lab that fails to load is kept with its diagnostics and logged; only a
// missing or unreadable manifest set fails Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting labviz service...", logger.String("labs_dir", s.labsDir))

	manifests := append([]*lab.Manifest(nil), s.extra...)
	if s.labsDir != "" {
		ms, err := lab.LoadDir(s.labsDir)
		if err != nil {
			if len(ms) == 0 && len(manifests) == 0 {
				return fmt.Errorf("load labs: %w", err)
			}
			s.logger.Warn(ctx, "some lab manifests were skipped", logger.Error(err))
		}
		manifests = append(manifests, ms...)
	}
	if len(manifests) == 0 {
		return fmt.Errorf("load labs: %w", lab.ErrNoManifests)
	}
	for _, m := range manifests {
		s.manifests[m.Name] = m
	}

	s.loader = source.NewLoader(append([]source.Option{source.WithLogger(s.logger.Named("source"))}, s.sourceOpts...)...)
	if err := s.loadAll(ctx, manifests); err != nil {
		s.logger.Warn(ctx, "some labs failed to load", logger.Error(err))
	}

	s.queue = renderqueue.NewInMemoryQueue(renderqueue.WithCapacity(s.queueSize))
	if s.sink == nil {
		s.sink = discardSink{}
	}
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.sink,
		workerpool.WithPoolLogger(s.logger.Named("worker-pool")))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "labviz service started",
		logger.Int("labs", len(s.manifests)),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// loadAll runs every lab pipeline concurrently, one fetch per lab. Each
// result is stored even when its source failed, so the failure shows up in
// the lab summary.
func (s *Service) loadAll(ctx context.Context, manifests []*lab.Manifest) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultLoadParallel)

	var (
		mu   sync.Mutex
		errs []error
	)
	reporter := pipeline.NewMetricsReporter(s.logger.Named("pipeline"))
	for _, m := range manifests {
		g.Go(func() error {
			err := s.loadLab(gctx, m, reporter)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", m.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *Service) loadLab(ctx context.Context, m *lab.Manifest, reporter pipeline.DropReporter) error {
	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	p, err := pipeline.New(m.Definition(), s.loader.Bind(m.SourceSpec()),
		pipeline.WithReporter(reporter),
		pipeline.WithLogger(s.logger.Named("pipeline")),
	)
	if err != nil {
		return err
	}
	ds, runErr := p.Run(ctx)
	if err := s.store.Put(ctx, ds); err != nil {
		return err
	}
	if runErr != nil {
		s.logger.Error(ctx, "lab load failed",
			logger.String("lab", m.Name),
			logger.Int("records", ds.Len()),
			logger.Error(runErr))
	}
	return runErr
}

// Reload re-runs the pipeline for one lab and replaces its dataset.
func (s *Service) Reload(ctx context.Context, name string) (model.Summary, error) {
	m, err := s.manifest(name)
	if err != nil {
		return model.Summary{}, err
	}
	loadErr := s.loadLab(ctx, m, pipeline.NewMetricsReporter(s.logger.Named("pipeline")))
	ds, err := s.store.Get(ctx, name)
	if err != nil {
		return model.Summary{}, err
	}
	return ds.Summarize(), loadErr
}

// SetSink sets where render workers deliver results. It must be called
// before Start.
func (s *Service) SetSink(sink workerpool.Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Stop gracefully shuts down the worker pool and render queue.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping labviz service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "labviz service stopped")
}

// Labs returns the summaries of every loaded lab.
func (s *Service) Labs(ctx context.Context) []model.Summary {
	return s.store.List(ctx)
}

// Dataset returns the loaded dataset for name.
func (s *Service) Dataset(ctx context.Context, name string) (*model.Dataset, error) {
	return s.store.Get(ctx, name)
}

// Groups counts a lab's records per value of field, smallest group first.
func (s *Service) Groups(ctx context.Context, name, field string) ([]types.GroupSize, error) {
	if field == "" {
		return nil, fmt.Errorf("%w: field is required", types.ErrInvalidInput)
	}
	ds, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	keyed := pipeline.Filter(ds.Records, func(r model.NormalizedRecord) bool {
		_, ok := r.Text(field)
		return ok
	})
	groups := pipeline.Group(keyed, func(r model.NormalizedRecord) string {
		k, _ := r.Text(field)
		return k
	}).SortBySize()

	out := make([]types.GroupSize, 0, groups.Len())
	for _, k := range groups.Keys {
		out = append(out, types.GroupSize{Key: k, Count: len(groups.Members[k])})
	}
	return out, nil
}

// Gate returns a fresh section gate for a session on lab name.
func (s *Service) Gate(name string) (*events.SectionGate, error) {
	m, err := s.manifest(name)
	if err != nil {
		return nil, err
	}
	return m.Gate(), nil
}

// Enqueue submits a render job for asynchronous processing. It returns
// renderqueue.ErrFull on backpressure.
func (s *Service) Enqueue(ctx context.Context, job model.RenderJob) error { //nolint:gocritic // hugeParam: jobs are values
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		return ErrNotStarted
	}
	return q.Enqueue(ctx, job)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	st := types.Stats{
		Started:      s.started,
		Labs:         s.store.Count(ctx),
		QueueSize:    s.queueSize,
		DefaultWidth: s.defaultWidth,
		MaxWidth:     s.maxWidth,
	}
	for _, sum := range s.store.List(ctx) {
		st.Records += sum.Records
	}
	if s.started {
		st.Workers = s.pool.Size()
		st.QueueLength = s.queue.Len(ctx)
	}
	return st
}

func (s *Service) manifest(name string) (*lab.Manifest, error) {
	s.mu.RLock()
	m, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, name)
	}
	return m, nil
}

type discardSink struct{}

func (discardSink) Deliver(context.Context, string, model.RenderResult) bool { return false }
