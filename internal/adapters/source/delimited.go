package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	model "github.com/okian/labviz/internal/domain/model"
)

const bom = "\ufeff"

// decodeDelimited reads a header row followed by data rows. Short rows
// leave trailing columns absent; extra cells are ignored.
func decodeDelimited(r io.Reader, comma rune) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	if comma == '\t' {
		// TSV does not quote.
		cr.LazyQuotes = true
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.Table{}, nil
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	t := model.Table{Columns: header}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return t, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		rec := make(model.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		t.Records = append(t.Records, rec)
	}
}
