// Package schema declares the typed fields a lab extracts from raw records
// and coerces raw values into them.
package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	model "github.com/okian/labviz/internal/domain/model"
)

// Field declares one typed value derived from a record.
type Field struct {
	Name string     `yaml:"name" json:"name" validate:"required"`
	Type model.Kind `yaml:"type" json:"type" validate:"required,oneof=string number integer date"`
	// Source lists the raw columns the value is built from. Empty means the
	// column with the field's own name.
	Source []string `yaml:"source,omitempty" json:"source,omitempty" validate:"omitempty,dive,required"`
	// Join separates multiple source columns.
	Join string `yaml:"join,omitempty" json:"join,omitempty"`
	// Layout is a strftime-style date layout. Empty means ISO-8601.
	Layout   string `yaml:"layout,omitempty" json:"layout,omitempty"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`

	goLayout string
}

// Schema is the explicit set of fields a lab relies on.
type Schema struct {
	Fields []Field `yaml:"fields" json:"fields" validate:"required,min=1,dive"`
	// Key names the field used as the deduplication key.
	Key string `yaml:"key,omitempty" json:"key,omitempty"`

	compiled bool
}

// FieldError reports why a record failed a field.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s: %v", e.Field, e.Reason, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Drop reasons used by FieldError.
const (
	ReasonMissing       = "missing_field"
	ReasonInvalidNumber = "invalid_number"
	ReasonInvalidInt    = "invalid_integer"
	ReasonInvalidDate   = "invalid_date"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Compile validates the schema and prepares date layouts. It must be called
// before Apply; a compiled schema is safe for concurrent use.
func (s *Schema) Compile() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Type == model.KindDate && f.Layout != "" {
			l, err := ConvertLayout(f.Layout)
			if err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidSchema, f.Name, err)
			}
			f.goLayout = l
		}
	}
	if s.Key != "" {
		if _, ok := seen[s.Key]; !ok {
			return fmt.Errorf("%w: key %q is not a declared field", ErrInvalidSchema, s.Key)
		}
	}
	s.compiled = true
	return nil
}

// Field returns the field named name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns the source columns of f.
func (f Field) Columns() []string {
	if len(f.Source) == 0 {
		return []string{f.Name}
	}
	return f.Source
}

// CheckHeader verifies that every column a required field reads exists.
func (s *Schema) CheckHeader(header []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		for _, c := range f.Columns() {
			if _, ok := have[c]; !ok {
				missing = append(missing, c)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}

// Compose joins the source columns of f from r. It reports false when any
// column is absent or blank.
func (f Field) Compose(r model.Record) (string, bool) {
	cols := f.Columns()
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		v, ok := r.Text(c)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		parts = append(parts, strings.TrimSpace(v))
	}
	return strings.Join(parts, f.Join), true
}

// Coerce converts raw text to the field's declared type.
func (f Field) Coerce(raw string) (model.Value, error) {
	switch f.Type {
	case model.KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return model.Value{}, fmt.Errorf("%w: %q is not a number", ErrCoerce, raw)
		}
		return model.NumberValue(n), nil
	case model.KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return model.Value{}, fmt.Errorf("%w: %q is not an integer", ErrCoerce, raw)
		}
		return model.IntegerValue(n), nil
	case model.KindDate:
		t, err := ParseDate(f.goLayout, raw)
		if err != nil {
			return model.Value{}, err
		}
		return model.DateValue(t), nil
	default:
		return model.StringValue(raw), nil
	}
}

// Apply derives every field from r. Optional fields that are missing or
// fail coercion are left out; the first failing required field is returned
// as a *FieldError.
func (s *Schema) Apply(r model.Record) (map[string]model.Value, error) {
	if !s.compiled {
		if err := s.Compile(); err != nil {
			return nil, err
		}
	}
	values := make(map[string]model.Value, len(s.Fields))
	for _, f := range s.Fields {
		raw, ok := f.Compose(r)
		if !ok {
			if f.Required {
				return nil, &FieldError{Field: f.Name, Reason: ReasonMissing, Err: ErrMissing}
			}
			continue
		}
		v, err := f.Coerce(raw)
		if err != nil {
			if f.Required {
				return nil, &FieldError{Field: f.Name, Reason: reasonFor(f.Type), Err: err}
			}
			continue
		}
		values[f.Name] = v
	}
	return values, nil
}

// KeyOf returns the deduplication key text for r: the composed raw text of
// the key field, before coercion.
func (s *Schema) KeyOf(r model.Record) (string, bool) {
	if s.Key == "" {
		return "", false
	}
	f, ok := s.Field(s.Key)
	if !ok {
		return "", false
	}
	return f.Compose(r)
}

func reasonFor(k model.Kind) string {
	switch k {
	case model.KindNumber:
		return ReasonInvalidNumber
	case model.KindInteger:
		return ReasonInvalidInt
	case model.KindDate:
		return ReasonInvalidDate
	default:
		return ReasonMissing
	}
}

// ReasonOf extracts the drop reason from an Apply error.
func ReasonOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return "invalid_record"
}
