package scrollsim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/labviz/pkg/logger"
)

// ErrUnexpectedRender is returned when a render cannot be explained by the
// script.
var ErrUnexpectedRender = errors.New("unexpected render")

// wsURL turns the service base URL into the session endpoint.
func wsURL(base, lab string, width float64) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/labs/" + url.PathEscape(lab) + "/ws"
	q := u.Query()
	q.Set("width", strconv.FormatFloat(width, 'f', -1, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// runSession plays steps over one connection and collects every frame that
// arrives until the settle period passes without traffic.
func runSession(ctx context.Context, cfg *Config, steps []Step, log logger.Logger) (*Stats, error) {
	target, err := wsURL(cfg.BaseURL, cfg.Lab, cfg.Width)
	if err != nil {
		return nil, err
	}
	dialer := websocket.Dialer{HandshakeTimeout: cfg.Timeout}
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	defer func() { _ = conn.Close() }()

	frames := make(chan Frame, 64)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(frames)
		for {
			var f Frame
			if err := conn.ReadJSON(&f); err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- f:
			case <-done:
				return
			}
		}
	}()

	stats := &Stats{Sessions: 1}
	for _, st := range steps {
		if err := conn.WriteJSON(st.message()); err != nil {
			return stats, fmt.Errorf("send step: %w", err)
		}
		stats.StepsSent++
		if st.Pause > 0 {
			select {
			case <-time.After(st.Pause):
			case <-ctx.Done():
				return stats, ctx.Err()
			}
		}
	}

	budget := BudgetFor(steps)
	settle := time.NewTimer(cfg.Settle)
	defer settle.Stop()
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				err := <-readErr
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return stats, verify(stats, budget)
				}
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					return stats, verify(stats, budget)
				}
				return stats, fmt.Errorf("read frame: %w", err)
			}
			if err := record(stats, f, budget); err != nil {
				return stats, err
			}
			if cfg.Verbose {
				log.Debug(ctx, "frame", logger.String("type", f.Type), logger.String("reason", f.Reason),
					logger.String("section", f.Section), logger.Float64("width", f.Width))
			}
			settle.Reset(cfg.Settle)
		case <-settle.C:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return stats, verify(stats, budget)
		case <-ctx.Done():
			return stats, ctx.Err()
		}
	}
}

// record counts f and rejects renders the script cannot explain.
func record(stats *Stats, f Frame, b Budget) error {
	switch f.Type {
	case "ready":
	case "render":
		stats.Renders++
		switch f.Reason {
		case ReasonOpen:
			stats.RendersOpen++
		case ReasonResize:
			stats.RendersResize++
		case ReasonSection:
			stats.RendersSection++
		default:
			return fmt.Errorf("%w: reason %q", ErrUnexpectedRender, f.Reason)
		}
		if !b.Sections[f.Section] {
			return fmt.Errorf("%w: section %q was never sent", ErrUnexpectedRender, f.Section)
		}
		if f.SVG == "" {
			return fmt.Errorf("%w: empty svg", ErrUnexpectedRender)
		}
	case "backpressure":
		stats.Backpressure++
	default:
		stats.Errors++
	}
	return nil
}

// verify checks render counts against the script's budget.
func verify(stats *Stats, b Budget) error {
	switch {
	case stats.RendersOpen > 1:
		return fmt.Errorf("%w: %d open renders", ErrUnexpectedRender, stats.RendersOpen)
	case stats.RendersResize > b.Resizes:
		return fmt.Errorf("%w: %d resize renders for %d resizes", ErrUnexpectedRender, stats.RendersResize, b.Resizes)
	case stats.RendersSection > b.SectionChanges:
		return fmt.Errorf("%w: %d section renders for %d section changes", ErrUnexpectedRender, stats.RendersSection, b.SectionChanges)
	}
	return nil
}
