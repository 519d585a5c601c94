package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("dataset not found")
	ErrInvalidDataset = errors.New("invalid dataset")
)
