// Package types contains read shapes and error kinds shared by the service
// and its HTTP surface.
package types

import "errors"

// ErrInvalidInput marks caller mistakes such as an out-of-range width or an
// unknown field. The HTTP layer maps it to 400.
var ErrInvalidInput = errors.New("invalid input")

// GroupSize is one group of a lab's records.
type GroupSize struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Stats is the service status returned by /stats.
type Stats struct {
	Started      bool    `json:"started"`
	Labs         int     `json:"labs"`
	Records      int     `json:"records"`
	Workers      int     `json:"workers"`
	QueueSize    int     `json:"queue_size"`
	QueueLength  int     `json:"queue_length"`
	DefaultWidth float64 `json:"default_width"`
	MaxWidth     float64 `json:"max_width"`
}
