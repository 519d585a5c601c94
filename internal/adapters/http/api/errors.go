package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// wrap prefixes err with the handler op.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
