package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	renderqueue "github.com/okian/labviz/internal/adapters/mq/queue"
	"github.com/okian/labviz/internal/domain/events"
	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/pkg/logger"
	"github.com/okian/labviz/pkg/metrics"
)

// Session is one connected client viewing one lab.
type Session struct {
	id  string
	lab string

	conn    *websocket.Conn
	hub     *Hub
	gate    *events.SectionGate
	limiter *rate.Limiter
	events  *events.Dispatcher

	mu      sync.Mutex
	width   float64
	pending *time.Timer

	outbox    chan []byte
	done      chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc

	started  time.Time
	pingWait time.Duration
	pongWait time.Duration
	logger   logger.Logger
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

func (s *Session) subscribe() {
	s.events.OnResize(s.onResize)
	s.events.OnSectionChange(s.gate.Wrap(func(ctx context.Context, _ events.SectionChange) {
		s.enqueue(ctx, "section")
	}))
}

// onResize renders at once while the limiter allows it. Otherwise the
// latest width is kept and a single trailing render is scheduled.
func (s *Session) onResize(ctx context.Context, e events.Resize) {
	s.mu.Lock()
	s.width = e.Width
	if s.pending != nil {
		s.mu.Unlock()
		metrics.RecordEventThrottled()
		return
	}
	r := s.limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		s.mu.Unlock()
		s.enqueue(ctx, "resize")
		return
	}
	s.pending = time.AfterFunc(delay, func() {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		s.enqueue(s.ctx, "resize")
	})
	s.mu.Unlock()
	metrics.RecordEventThrottled()
}

func (s *Session) enqueue(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	width := s.width
	s.mu.Unlock()

	job := model.RenderJob{
		ID:         uuid.NewString(),
		SessionID:  s.id,
		Lab:        s.lab,
		Width:      width,
		Section:    s.gate.Current(),
		Reason:     reason,
		EnqueuedAt: time.Now(),
	}
	err := s.hub.backend.Enqueue(ctx, job)
	switch {
	case err == nil:
	case errors.Is(err, renderqueue.ErrFull):
		_ = s.send(Frame{Type: FrameBackpressure, JobID: job.ID, Lab: s.lab, Reason: reason, Error: err.Error()})
	default:
		s.logger.Warn(ctx, "enqueue failed", logger.Error(err))
		_ = s.send(Frame{Type: FrameError, JobID: job.ID, Lab: s.lab, Reason: reason, Error: err.Error()})
	}
}

// handle decodes one client message and dispatches it.
func (s *Session) handle(msg []byte) {
	e, err := events.Decode(msg)
	if err != nil {
		metrics.RecordSessionEvent("invalid")
		_ = s.send(Frame{Type: FrameError, Lab: s.lab, Error: err.Error()})
		return
	}
	metrics.RecordSessionEvent(string(e.Type()))
	s.events.Dispatch(s.ctx, e)
}

// send queues f for the write pump without blocking.
func (s *Session) send(f Frame) error { //nolint:gocritic // hugeParam: frames are values
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.outbox <- b:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		s.logger.Warn(s.ctx, "outbox full, dropping frame", logger.String("type", f.Type))
		return ErrOutboxFull
	}
}

func (s *Session) readPump() {
	defer s.close()
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn(s.ctx, "unexpected close", logger.Error(err))
			}
			return
		}
		s.handle(msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.pingWait)
	defer func() {
		ticker.Stop()
		s.close()
	}()
	for {
		select {
		case msg := <-s.outbox:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Debug(s.ctx, "write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Debug(s.ctx, "ping failed", logger.Error(err))
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.done)
		s.mu.Lock()
		if s.pending != nil {
			s.pending.Stop()
			s.pending = nil
		}
		s.mu.Unlock()
		s.hub.remove(s)
		_ = s.conn.Close()
	})
}
