package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	model "github.com/okian/labviz/internal/domain/model"
)

// decodeXLSX reads one worksheet. The first non-empty row is the header.
func decodeXLSX(r io.Reader, sheet string) (model.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: open workbook: %v", ErrMalformed, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return model.Table{}, nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: sheet %q: %v", ErrMalformed, sheet, err)
	}

	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return model.Table{}, nil
	}
	header := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		header[i] = strings.TrimSpace(h)
	}
	t := model.Table{Columns: header}
	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		rec := make(model.Record, len(header))
		for i, col := range header {
			if col != "" && i < len(row) {
				rec[col] = row[i]
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
