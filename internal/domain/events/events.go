// Package events carries viewport and narrative events to subscribers.
package events

import (
	"context"
	"sync"
)

// Type names an event on the wire.
type Type string

// Event types.
const (
	TypeResize  Type = "resize"
	TypeSection Type = "section"
)

// Event is implemented by Resize and SectionChange.
type Event interface {
	Type() Type
}

// Resize reports a new container width in pixels.
type Resize struct {
	Width float64 `json:"width"`
}

// Type implements Event.
func (Resize) Type() Type { return TypeResize }

// SectionChange reports the narrative section now in view.
type SectionChange struct {
	ID string `json:"id"`
}

// Type implements Event.
func (SectionChange) Type() Type { return TypeSection }

// ResizeHandler handles resize events.
type ResizeHandler func(ctx context.Context, e Resize)

// SectionHandler handles section changes.
type SectionHandler func(ctx context.Context, e SectionChange)

// Dispatcher fans typed events out to subscribers. Handlers run
// synchronously in subscription order.
type Dispatcher struct {
	mu       sync.RWMutex
	next     uint64
	resize   map[uint64]ResizeHandler
	sections map[uint64]SectionHandler
	order    []uint64
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		resize:   make(map[uint64]ResizeHandler),
		sections: make(map[uint64]SectionHandler),
	}
}

// OnResize subscribes h and returns a function that unsubscribes it.
func (d *Dispatcher) OnResize(h ResizeHandler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.add()
	d.resize[id] = h
	return d.remover(id)
}

// OnSectionChange subscribes h and returns a function that unsubscribes it.
func (d *Dispatcher) OnSectionChange(h SectionHandler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.add()
	d.sections[id] = h
	return d.remover(id)
}

func (d *Dispatcher) add() uint64 {
	d.next++
	d.order = append(d.order, d.next)
	return d.next
}

func (d *Dispatcher) remover(id uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.resize, id)
			delete(d.sections, id)
			for i, o := range d.order {
				if o == id {
					d.order = append(d.order[:i], d.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Dispatch delivers e to every matching subscriber and reports how many
// handlers ran.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) int {
	d.mu.RLock()
	var resize []ResizeHandler
	var sections []SectionHandler
	for _, id := range d.order {
		if h, ok := d.resize[id]; ok {
			resize = append(resize, h)
		}
		if h, ok := d.sections[id]; ok {
			sections = append(sections, h)
		}
	}
	d.mu.RUnlock()

	switch ev := e.(type) {
	case Resize:
		for _, h := range resize {
			h(ctx, ev)
		}
		return len(resize)
	case SectionChange:
		for _, h := range sections {
			h(ctx, ev)
		}
		return len(sections)
	default:
		return 0
	}
}
