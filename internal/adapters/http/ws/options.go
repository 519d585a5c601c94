package ws

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/labviz/pkg/logger"
)

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithLogger sets a custom logger for the hub and its sessions.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithResizeLimit caps how many resize renders one session may trigger
// per second. Throttled resizes collapse into one trailing render.
func WithResizeLimit(perSec float64, burst int) Option {
	return func(h *Hub) {
		if perSec > 0 {
			h.resizeRate = rate.Limit(perSec)
		}
		if burst > 0 {
			h.resizeBurst = burst
		}
	}
}

// WithOutboxSize sets how many frames may wait for a slow client.
func WithOutboxSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.outboxSize = n
		}
	}
}

// WithPingPeriod sets the keepalive interval. The pong deadline follows it.
func WithPingPeriod(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pingPeriod = d
			h.pongWait = d * 10 / 9
		}
	}
}
