package events

import (
	"context"
	"sync"
)

// SectionGate passes a section change only when the identifier differs
// from the last one that passed. With triggers set, only those sections
// pass, and a return to the same trigger after visiting other sections
// does not pass again.
type SectionGate struct {
	mu       sync.Mutex
	current  string
	last     string
	seen     bool
	triggers map[string]struct{}
}

// NewSectionGate creates a gate. No triggers means every section can pass.
func NewSectionGate(triggers ...string) *SectionGate {
	g := &SectionGate{}
	if len(triggers) > 0 {
		g.triggers = make(map[string]struct{}, len(triggers))
		for _, t := range triggers {
			g.triggers[t] = struct{}{}
		}
	}
	return g
}

// Allow records id and reports whether it should trigger a re-render.
func (g *SectionGate) Allow(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = id
	if g.triggers != nil {
		if _, ok := g.triggers[id]; !ok {
			return false
		}
	}
	if g.seen && id == g.last {
		return false
	}
	g.last, g.seen = id, true
	return true
}

// Current returns the last observed section, triggered or not.
func (g *SectionGate) Current() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Wrap returns a handler that forwards only allowed section changes to h.
func (g *SectionGate) Wrap(h SectionHandler) SectionHandler {
	return func(ctx context.Context, e SectionChange) {
		if g.Allow(e.ID) {
			h(ctx, e)
		}
	}
}
