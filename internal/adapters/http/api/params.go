package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// floatParam parses an optional non-negative query parameter. Missing
// means zero.
func floatParam(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative number", ErrBadRequest, key)
	}
	return v, nil
}

// intParam parses an optional non-negative integer query parameter.
func intParam(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, key)
	}
	return v, nil
}
