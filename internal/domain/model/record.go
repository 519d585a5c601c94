// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Record is one raw input row as read from a source. Values are string,
// float64, bool or nil.
type Record map[string]any

// Text returns the field as text. Numbers use the shortest decimal form,
// so a JSON 1 and a CSV "1" compare equal.
func (r Record) Text(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Kind is the declared type of a normalized value.
type Kind string

// Value kinds.
const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindDate    Kind = "date"
)

// Value is a typed field value produced by normalization.
type Value struct {
	Kind Kind      `json:"kind"`
	Str  string    `json:"str,omitempty"`
	Num  float64   `json:"num,omitempty"`
	Time time.Time `json:"time,omitempty"`
}

// StringValue builds a string value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue builds a number value.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// IntegerValue builds an integer value.
func IntegerValue(i int64) Value { return Value{Kind: KindInteger, Num: float64(i)} }

// DateValue builds a date value.
func DateValue(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// Float returns the value on a continuous axis: numbers as-is, dates as
// Unix milliseconds.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber, KindInteger:
		return v.Num, true
	case KindDate:
		return float64(v.Time.UnixMilli()), true
	default:
		return 0, false
	}
}

// String renders the value for labels and keys.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber, KindInteger:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Str
	}
}

// NormalizedRecord is a Record plus the typed values derived from it.
type NormalizedRecord struct {
	// Index is the row position in the source, starting at 0.
	Index  int              `json:"index"`
	Raw    Record           `json:"raw"`
	Values map[string]Value `json:"values"`
}

// Value returns the derived value for field.
func (n NormalizedRecord) Value(field string) (Value, bool) {
	v, ok := n.Values[field]
	return v, ok
}

// Number returns a numeric derived field.
func (n NormalizedRecord) Number(field string) (float64, bool) {
	v, ok := n.Values[field]
	if !ok || (v.Kind != KindNumber && v.Kind != KindInteger) {
		return 0, false
	}
	return v.Num, true
}

// Time returns a date derived field.
func (n NormalizedRecord) Time(field string) (time.Time, bool) {
	v, ok := n.Values[field]
	if !ok || v.Kind != KindDate {
		return time.Time{}, false
	}
	return v.Time, true
}

// Text returns a derived field as text, falling back to the raw record.
func (n NormalizedRecord) Text(field string) (string, bool) {
	if v, ok := n.Values[field]; ok {
		return v.String(), true
	}
	s, ok := n.Raw.Text(field)
	return strings.TrimSpace(s), ok
}

// DisplayPoint is a normalized record placed in screen space.
type DisplayPoint struct {
	Record NormalizedRecord `json:"record"`
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
	R      float64          `json:"r"`
}

// Table is the raw result of reading a source: its header and rows.
type Table struct {
	Columns []string
	Records []Record
}
