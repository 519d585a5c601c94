package schema

import "errors"

var (
	// ErrInvalidSchema is returned when a schema fails validation.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrSchemaMismatch is returned when a source lacks columns the schema requires.
	ErrSchemaMismatch = errors.New("schema does not match source columns")
	// ErrLayout is returned for date layouts with unsupported directives.
	ErrLayout = errors.New("unsupported date layout")
	// ErrMissing is returned when a source column is absent or empty.
	ErrMissing = errors.New("missing value")
	// ErrCoerce is returned when a value cannot be converted to the field type.
	ErrCoerce = errors.New("value does not match field type")
)
