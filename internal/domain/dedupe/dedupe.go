// Package dedupe tracks natural keys so that only the first record per key survives.
package dedupe

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/unicode/norm"
)

// Deduper records seen keys for first-occurrence-wins filtering.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

// NormalizeKey trims surrounding whitespace and applies Unicode NFC, so
// visually identical keys from different encodings collide.
func NormalizeKey(key string) string {
	return norm.NFC.String(strings.TrimSpace(key))
}

// inMemoryDeduper keeps every key for the lifetime of one pipeline run.
// Datasets are small and a lost key would let a duplicate through, so
// there is no eviction.
type inMemoryDeduper struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	normalize func(string) string
	capacity  int
	size      atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		normalize: NormalizeKey,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.normalize == nil {
		d.normalize = func(s string) string { return s }
	}
	d.seen = make(map[string]struct{}, d.capacity)
	return d
}

// SeenAndRecord atomically checks if key was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	k := d.normalize(key)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[k]; exists {
		return true
	}
	d.seen[k] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the current number of keys in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
