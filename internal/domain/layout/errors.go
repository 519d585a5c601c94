package layout

import "errors"

var (
	// ErrInvalidViewport is returned for non-positive viewport sizes.
	ErrInvalidViewport = errors.New("invalid viewport")
	// ErrInvalidEncoding is returned when an axis encoding cannot be built.
	ErrInvalidEncoding = errors.New("invalid encoding")
)
