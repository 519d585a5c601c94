package pipeline

import (
	"context"
	"errors"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/schema"
)

// Normalize applies s to every record, in input order. Records failing a
// required field are dropped and passed to report.
func Normalize(ctx context.Context, lab string, records []model.Record, s *schema.Schema, report DropReporter) ([]model.NormalizedRecord, error) {
	if err := s.Compile(); err != nil {
		return nil, err
	}
	if report == nil {
		report = Discard
	}
	out := make([]model.NormalizedRecord, 0, len(records))
	for i, r := range records {
		values, err := s.Apply(r)
		if err != nil {
			d := Drop{Lab: lab, Index: i, Reason: schema.ReasonOf(err), Err: err}
			var fe *schema.FieldError
			if errors.As(err, &fe) {
				d.Field = fe.Field
			}
			report.ReportDrop(ctx, d)
			continue
		}
		out = append(out, model.NormalizedRecord{Index: i, Raw: r, Values: values})
	}
	return out, nil
}
