package ws

import "errors"

// Sentinel errors for websocket sessions.
var (
	// ErrSessionClosed is returned when sending to a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrOutboxFull is returned when a session's outbox has no room.
	ErrOutboxFull = errors.New("session outbox full")
)
