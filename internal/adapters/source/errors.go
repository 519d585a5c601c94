package source

import "errors"

var (
	// ErrNoSource is returned when neither a path nor a URL is configured.
	ErrNoSource = errors.New("either path or url must be provided")
	// ErrUnreachable is returned when the source cannot be opened or fetched.
	ErrUnreachable = errors.New("source unreachable")
	// ErrMalformed is returned when parsing stops part way through a source.
	// Records decoded before the fault are still returned.
	ErrMalformed = errors.New("source malformed")
	// ErrFormat is returned for unknown or unsupported formats.
	ErrFormat = errors.New("unsupported source format")
)
