package pipeline

import "errors"

var (
	// ErrInvalidDefinition is returned when a pipeline definition is incomplete.
	ErrInvalidDefinition = errors.New("invalid pipeline definition")
	// ErrInvalidPredicate is returned when a filter predicate cannot be compiled.
	ErrInvalidPredicate = errors.New("invalid filter predicate")
)
