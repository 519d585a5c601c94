package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrClosed = errors.New("render queue closed")
	ErrFull   = errors.New("render queue full")
)
