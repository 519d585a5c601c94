// Package ws serves interactive chart sessions over websockets. Clients
// report viewport widths and narrative sections; the hub turns them into
// render jobs and streams the finished SVG back.
package ws

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/okian/labviz/internal/domain/events"
	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/pkg/logger"
	"github.com/okian/labviz/pkg/metrics"
)

const (
	writeWait         = 10 * time.Second
	defaultPongWait   = 60 * time.Second
	maxMessageSize    = 512
	defaultOutboxSize = 16
	defaultResizeRate = 4
	defaultBurst      = 2
)

// Backend is what sessions need from the application service.
type Backend interface {
	Gate(name string) (*events.SectionGate, error)
	Enqueue(ctx context.Context, job model.RenderJob) error
}

// Hub tracks live sessions and routes render results to them. It
// implements the worker pool's Sink.
type Hub struct {
	backend  Backend
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session

	resizeRate  rate.Limit
	resizeBurst int
	outboxSize  int
	pingPeriod  time.Duration
	pongWait    time.Duration

	logger logger.Logger
}

// NewHub creates a hub backed by b.
func NewHub(b Backend, opts ...Option) *Hub {
	h := &Hub{
		backend:     b,
		sessions:    make(map[string]*Session),
		resizeRate:  defaultResizeRate,
		resizeBurst: defaultBurst,
		outboxSize:  defaultOutboxSize,
		pongWait:    defaultPongWait,
		pingPeriod:  defaultPongWait * 9 / 10,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("ws")
	}
	return h
}

// Register attaches the session route to mux.
func (h *Hub) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /labs/{name}/ws", h.HandleSession)
}

// HandleSession upgrades GET /labs/{name}/ws?width=W and runs the session
// until the client goes away.
func (h *Hub) HandleSession(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	gate, err := h.backend.Gate(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var width float64
	if raw := r.URL.Query().Get("width"); raw != "" {
		width, err = strconv.ParseFloat(raw, 64)
		if err != nil || width < 0 {
			http.Error(w, "width must be a non-negative number", http.StatusBadRequest)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	s := h.newSession(conn, name, width, gate)
	h.add(s)
	_ = s.send(Frame{Type: FrameReady, Session: s.id, Lab: name})
	s.enqueue(s.ctx, "open")

	go s.writePump()
	s.readPump()
}

func (h *Hub) newSession(conn *websocket.Conn, lab string, width float64, gate *events.SectionGate) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		lab:      lab,
		width:    width,
		conn:     conn,
		hub:      h,
		gate:     gate,
		limiter:  rate.NewLimiter(h.resizeRate, h.resizeBurst),
		events:   events.NewDispatcher(),
		outbox:   make(chan []byte, h.outboxSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		started:  time.Now(),
		logger:   h.logger.Named(id),
		pingWait: h.pingPeriod,
		pongWait: h.pongWait,
	}
	s.subscribe()
	return s
}

func (h *Hub) add(s *Session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	metrics.UpdateSessionsActive(1)
	h.logger.Info(s.ctx, "session opened", logger.String("session", s.id), logger.String("lab", s.lab))
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	delete(h.sessions, s.id)
	h.mu.Unlock()
	if ok {
		metrics.UpdateSessionsActive(-1)
		h.logger.Info(context.Background(), "session closed",
			logger.String("session", s.id),
			logger.Duration("duration", time.Since(s.started)))
	}
}

// Deliver sends a finished render to its session. It reports false when the
// session is gone or its outbox is full.
func (h *Hub) Deliver(_ context.Context, sessionID string, res model.RenderResult) bool { //nolint:gocritic // hugeParam: results are values
	h.mu.RLock()
	s, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return s.send(resultFrame(res)) == nil
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close ends every live session.
func (h *Hub) Close() {
	h.mu.RLock()
	live := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		live = append(live, s)
	}
	h.mu.RUnlock()
	for _, s := range live {
		s.close()
	}
}
