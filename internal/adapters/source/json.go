package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	model "github.com/okian/labviz/internal/domain/model"
)

// decodeJSON streams a top-level array of objects. Columns are the union of
// keys in first-seen order, sorted within each object.
func decodeJSON(r io.Reader) (model.Table, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return model.Table{}, nil
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return model.Table{}, fmt.Errorf("%w: expected a top-level array", ErrMalformed)
	}

	var t model.Table
	seen := make(map[string]struct{})
	for dec.More() {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return t, fmt.Errorf("%w: element %d: %v", ErrMalformed, len(t.Records), err)
		}
		if obj == nil {
			return t, fmt.Errorf("%w: element %d is not an object", ErrMalformed, len(t.Records))
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			if _, ok := seen[k]; !ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = struct{}{}
			t.Columns = append(t.Columns, k)
		}
		t.Records = append(t.Records, model.Record(obj))
	}
	if _, err := dec.Token(); err != nil {
		return t, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return t, nil
}
