// Package pipeline turns raw source rows into the normalized, deduplicated
// and filtered records a chart is drawn from.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/okian/labviz/internal/domain/dedupe"
)

// Filter returns the subsequence of records for which keep holds, in order.
func Filter[T any](records []T, keep func(T) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Dedupe keeps the first record per key and silently discards later ones.
// Records without a key are kept. A nil deduper uses a fresh in-memory one.
func Dedupe[T any](ctx context.Context, records []T, key func(T) (string, bool), d dedupe.Deduper) []T {
	if d == nil {
		d = dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(records)))
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		k, ok := key(r)
		if ok && d.SeenAndRecord(ctx, k) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Limit returns at most n records. n <= 0 means no limit.
func Limit[T any](records []T, n int) []T {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[:n]
}

// Groups maps each key to its members. Keys holds first-seen key order.
type Groups[K comparable, T any] struct {
	Keys    []K
	Members map[K][]T
}

// Group partitions records by keyFn, keeping member order.
func Group[T any, K comparable](records []T, keyFn func(T) K) Groups[K, T] {
	g := Groups[K, T]{Members: make(map[K][]T)}
	for _, r := range records {
		k := keyFn(r)
		if _, ok := g.Members[k]; !ok {
			g.Keys = append(g.Keys, k)
		}
		g.Members[k] = append(g.Members[k], r)
	}
	return g
}

// Len returns the number of groups.
func (g Groups[K, T]) Len() int { return len(g.Keys) }

// SortBySize returns a copy with keys ordered by ascending group size.
// Equal sizes keep first-seen order.
func (g Groups[K, T]) SortBySize() Groups[K, T] {
	keys := make([]K, len(g.Keys))
	copy(keys, g.Keys)
	sort.SliceStable(keys, func(i, j int) bool {
		return len(g.Members[keys[i]]) < len(g.Members[keys[j]])
	})
	return Groups[K, T]{Keys: keys, Members: g.Members}
}

// Extent returns the minimum and maximum of fn over records. ok is false
// when no record yields a value.
func Extent[T any](records []T, fn func(T) (float64, bool)) (lo, hi float64, ok bool) {
	for _, r := range records {
		v, has := fn(r)
		if !has {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}

// TimeExtent is Extent over dates.
func TimeExtent[T any](records []T, fn func(T) (time.Time, bool)) (lo, hi time.Time, ok bool) {
	for _, r := range records {
		v, has := fn(r)
		if !has {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v.Before(lo) {
			lo = v
		}
		if v.After(hi) {
			hi = v
		}
	}
	return lo, hi, ok
}
