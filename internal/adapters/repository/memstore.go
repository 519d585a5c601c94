package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/pkg/logger"
	"github.com/okian/labviz/pkg/metrics"
)

// Snapshot is an immutable view of the store used by list reads.
type Snapshot struct {
	Summaries []model.Summary // sorted by name
}

// MemoryStore is an in-memory Store. Datasets are never mutated after Put,
// so readers share them without copying.
type MemoryStore struct {
	mu     sync.RWMutex
	byName map[string]*model.Dataset
	log    logger.Logger

	// snapshot is rebuilt on every Put so List never takes the lock.
	snapshot atomic.Pointer[Snapshot]
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byName: make(map[string]*model.Dataset),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{})
	return s
}

// Put implements Store.Put.
func (s *MemoryStore) Put(ctx context.Context, ds *model.Dataset) error {
	if ds == nil || ds.Name == "" {
		metrics.RecordErrorByComponent("repository", "invalid_dataset")
		return fmt.Errorf("%w: name is required", ErrInvalidDataset)
	}

	s.mu.Lock()
	_, replaced := s.byName[ds.Name]
	s.byName[ds.Name] = ds
	s.publishSnapshotLocked()
	n := len(s.byName)
	s.mu.Unlock()

	metrics.UpdateDatasetsLoaded(n)
	s.log.Debug(ctx, "dataset stored",
		logger.String("lab", ds.Name),
		logger.Int("records", ds.Len()),
		logger.Bool("replaced", replaced))
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, name string) (*model.Dataset, error) {
	s.mu.RLock()
	ds, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return ds, nil
}

// List implements Store.List.
func (s *MemoryStore) List(context.Context) []model.Summary {
	snap := s.snapshot.Load()
	out := make([]model.Summary, len(snap.Summaries))
	copy(out, snap.Summaries)
	return out
}

// Count implements Store.Count.
func (s *MemoryStore) Count(context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// publishSnapshotLocked rebuilds the list snapshot (assumes lock is held).
func (s *MemoryStore) publishSnapshotLocked() {
	sums := make([]model.Summary, 0, len(s.byName))
	for _, ds := range s.byName {
		sums = append(sums, ds.Summarize())
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i].Name < sums[j].Name })
	s.snapshot.Store(&Snapshot{Summaries: sums})
}
