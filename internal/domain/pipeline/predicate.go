package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/schema"
)

// Op is a comparison used in a filter predicate.
type Op string

// Supported operators.
const (
	OpEq     Op = "eq"
	OpNe     Op = "ne"
	OpIn     Op = "in"
	OpGt     Op = "gt"
	OpGte    Op = "gte"
	OpLt     Op = "lt"
	OpLte    Op = "lte"
	OpExists Op = "exists"
)

// Predicate is a declarative filter on one field. A lab's predicates are
// combined with AND.
type Predicate struct {
	Field  string   `yaml:"field" json:"field" validate:"required"`
	Op     Op       `yaml:"op" json:"op" validate:"required,oneof=eq ne in gt gte lt lte exists"`
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Compile turns predicates into a single keep function. No predicates keep
// everything.
func Compile(preds []Predicate) (func(model.NormalizedRecord) bool, error) {
	fns := make([]func(model.NormalizedRecord) bool, 0, len(preds))
	for _, p := range preds {
		fn, err := p.compile()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return func(r model.NormalizedRecord) bool {
		for _, fn := range fns {
			if !fn(r) {
				return false
			}
		}
		return true
	}, nil
}

func (p Predicate) compile() (func(model.NormalizedRecord) bool, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPredicate, err)
	}
	switch {
	case p.Op == OpExists && len(p.Values) != 0:
		return nil, fmt.Errorf("%w: %s takes no values", ErrInvalidPredicate, p.Op)
	case p.Op == OpIn && len(p.Values) == 0:
		return nil, fmt.Errorf("%w: %s needs at least one value", ErrInvalidPredicate, p.Op)
	case p.Op != OpExists && p.Op != OpIn && len(p.Values) != 1:
		return nil, fmt.Errorf("%w: %s needs exactly one value", ErrInvalidPredicate, p.Op)
	}

	field := p.Field
	switch p.Op {
	case OpExists:
		return func(r model.NormalizedRecord) bool {
			s, ok := r.Text(field)
			return ok && s != ""
		}, nil
	case OpIn:
		values := p.Values
		return func(r model.NormalizedRecord) bool {
			for _, v := range values {
				if c, ok := compare(r, field, v); ok && c == 0 {
					return true
				}
			}
			return false
		}, nil
	}

	want := p.Values[0]
	test := map[Op]func(int) bool{
		OpEq:  func(c int) bool { return c == 0 },
		OpGt:  func(c int) bool { return c > 0 },
		OpGte: func(c int) bool { return c >= 0 },
		OpLt:  func(c int) bool { return c < 0 },
		OpLte: func(c int) bool { return c <= 0 },
	}[p.Op]
	if p.Op == OpNe {
		return func(r model.NormalizedRecord) bool {
			c, ok := compare(r, field, want)
			return !ok || c != 0
		}, nil
	}
	return func(r model.NormalizedRecord) bool {
		c, ok := compare(r, field, want)
		return ok && test(c)
	}, nil
}

// compare orders the record's field against want. Typed fields compare by
// their kind; anything else compares as trimmed text.
func compare(r model.NormalizedRecord, field, want string) (int, bool) {
	if v, ok := r.Value(field); ok {
		switch v.Kind {
		case model.KindNumber, model.KindInteger:
			w, err := strconv.ParseFloat(strings.TrimSpace(want), 64)
			if err != nil {
				return 0, false
			}
			return cmpFloat(v.Num, w), true
		case model.KindDate:
			w, err := schema.ParseDate("", strings.TrimSpace(want))
			if err != nil {
				return 0, false
			}
			return v.Time.Compare(w), true
		}
	}
	s, ok := r.Text(field)
	if !ok {
		return 0, false
	}
	return strings.Compare(s, want), true
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
