package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/pipeline"
	"github.com/okian/labviz/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

var errBroken = errors.New("broken")

func booksDefinition() pipeline.Definition {
	return pipeline.Definition{
		Name: "books",
		Schema: &schema.Schema{
			Key: "isbn",
			Fields: []schema.Field{
				{Name: "isbn", Type: model.KindNumber, Required: true},
				{Name: "published", Type: model.KindDate, Source: []string{"pubdate mo", "pubdate yr"}, Join: ",", Layout: "%b,%Y", Required: true},
				{Name: "fullname", Type: model.KindString, Source: []string{"auth-first", "auth-last"}, Join: " "},
			},
		},
		Filters: []pipeline.Predicate{{Field: "country", Op: pipeline.OpEq, Values: []string{"Germany"}}},
	}
}

func booksTable() model.Table {
	cols := []string{"isbn", "pubdate mo", "pubdate yr", "auth-first", "auth-last", "country"}
	return model.Table{
		Columns: cols,
		Records: []model.Record{
			{"isbn": "1", "pubdate mo": "Jan", "pubdate yr": "2007", "auth-first": "Thomas", "auth-last": "Mann", "country": "Germany"},
			{"isbn": "2", "pubdate mo": "Smarch", "pubdate yr": "2007", "auth-first": "Franz", "auth-last": "Kafka", "country": "Germany"},
			{"isbn": "1", "pubdate mo": "Feb", "pubdate yr": "2008", "auth-first": "Thomas", "auth-last": "Mann", "country": "Germany"},
			{"isbn": "x", "pubdate mo": "Mar", "pubdate yr": "2009", "auth-first": "Hermann", "auth-last": "Hesse", "country": "Germany"},
			{"isbn": "3", "pubdate mo": "Apr", "pubdate yr": "2010", "auth-first": "Victor", "auth-last": "Hugo", "country": "France"},
			{"isbn": "4", "pubdate mo": "may", "pubdate yr": "2011", "auth-first": "Anna", "auth-last": "Seghers", "country": "Germany"},
		},
	}
}

func staticSource(t model.Table, err error) pipeline.Source {
	return pipeline.SourceFunc(func(context.Context) (model.Table, error) { return t, err })
}

type recordingReporter struct {
	mu    sync.Mutex
	drops []pipeline.Drop
}

func (r *recordingReporter) ReportDrop(_ context.Context, d pipeline.Drop) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drops = append(r.drops, d)
}

func TestPipelineRun(t *testing.T) {
	Convey("Given the translated books pipeline", t, func() {
		ctx := context.Background()
		rep := &recordingReporter{}

		Convey("When the source loads cleanly", func() {
			p, err := pipeline.New(booksDefinition(), staticSource(booksTable(), nil), pipeline.WithReporter(rep))
			So(err, ShouldBeNil)
			So(p.Name(), ShouldEqual, "books")

			ds, err := p.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then bad rows are dropped, duplicates discarded and filters applied", func() {
				So(ds.Len(), ShouldEqual, 2)
				So(ds.Records[0].Index, ShouldEqual, 0)
				So(ds.Records[1].Index, ShouldEqual, 5)
				name, _ := ds.Records[0].Text("fullname")
				So(name, ShouldEqual, "Thomas Mann")
				when, _ := ds.Records[0].Time("published")
				So(when, ShouldEqual, time.Date(2007, time.January, 1, 0, 0, 0, 0, time.UTC))
			})

			Convey("Then the raw record is kept unchanged", func() {
				So(ds.Records[0].Raw, ShouldResemble, booksTable().Records[0])
			})

			Convey("Then diagnostics account for every row", func() {
				So(ds.Diag.Read, ShouldEqual, 6)
				So(ds.Diag.Dropped, ShouldResemble, map[string]int{"invalid_date": 1, "invalid_number": 1})
				So(ds.Diag.Duplicates, ShouldEqual, 1)
				So(ds.Diag.Filtered, ShouldEqual, 1)
				So(ds.LoadedAt.IsZero(), ShouldBeFalse)
			})

			Convey("Then every drop is reported with its row", func() {
				So(len(rep.drops), ShouldEqual, 2)
				So(rep.drops[0].Index, ShouldEqual, 1)
				So(rep.drops[0].Field, ShouldEqual, "published")
				So(rep.drops[1].Reason, ShouldEqual, schema.ReasonInvalidNumber)
			})
		})

		Convey("When a limit is set", func() {
			def := booksDefinition()
			def.Filters = nil
			def.Limit = 2
			p, err := pipeline.New(def, staticSource(booksTable(), nil))
			So(err, ShouldBeNil)
			ds, err := p.Run(ctx)
			So(err, ShouldBeNil)
			So(ds.Len(), ShouldEqual, 2)
		})

		Convey("When the source is unreachable", func() {
			p, err := pipeline.New(booksDefinition(), staticSource(model.Table{}, errBroken))
			So(err, ShouldBeNil)
			ds, err := p.Run(ctx)

			Convey("Then the dataset is empty and carries the error", func() {
				So(errors.Is(err, errBroken), ShouldBeTrue)
				So(ds, ShouldNotBeNil)
				So(ds.Len(), ShouldEqual, 0)
				So(ds.Diag.LoadError, ShouldEqual, "broken")
			})
		})

		Convey("When the source is malformed part way", func() {
			tbl := booksTable()
			tbl.Records = tbl.Records[:1]
			p, err := pipeline.New(booksDefinition(), staticSource(tbl, errBroken))
			So(err, ShouldBeNil)
			ds, err := p.Run(ctx)

			Convey("Then the partial records are still normalized", func() {
				So(errors.Is(err, errBroken), ShouldBeTrue)
				So(ds.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the source lacks a required column", func() {
			tbl := booksTable()
			tbl.Columns = []string{"isbn", "country"}
			p, err := pipeline.New(booksDefinition(), staticSource(tbl, nil))
			So(err, ShouldBeNil)
			ds, err := p.Run(ctx)

			Convey("Then the run fails with a schema mismatch", func() {
				So(errors.Is(err, schema.ErrSchemaMismatch), ShouldBeTrue)
				So(ds.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the definition is incomplete", func() {
			_, err := pipeline.New(pipeline.Definition{Name: "x"}, staticSource(model.Table{}, nil))
			So(errors.Is(err, pipeline.ErrInvalidDefinition), ShouldBeTrue)

			def := booksDefinition()
			def.Filters = []pipeline.Predicate{{Field: "country", Op: "like"}}
			_, err = pipeline.New(def, staticSource(model.Table{}, nil))
			So(errors.Is(err, pipeline.ErrInvalidPredicate), ShouldBeTrue)
		})

		Convey("When the same pipeline runs twice", func() {
			p, err := pipeline.New(booksDefinition(), staticSource(booksTable(), nil))
			So(err, ShouldBeNil)
			a, _ := p.Run(ctx)
			b, _ := p.Run(ctx)

			Convey("Then the output is identical", func() {
				So(a.Records, ShouldResemble, b.Records)
			})
		})
	})
}

func TestNormalizeProperties(t *testing.T) {
	Convey("Given rows that may or may not satisfy the schema", t, func() {
		s := booksDefinition().Schema
		rows := booksTable().Records
		out, err := pipeline.Normalize(context.Background(), "books", rows, s, nil)
		So(err, ShouldBeNil)

		Convey("Then output is no longer than input and every required field is set", func() {
			So(len(out), ShouldBeLessThanOrEqualTo, len(rows))
			for _, r := range out {
				_, ok := r.Number("isbn")
				So(ok, ShouldBeTrue)
				_, ok = r.Time("published")
				So(ok, ShouldBeTrue)
			}
		})

		Convey("Then input order is preserved", func() {
			for i := 1; i < len(out); i++ {
				So(out[i].Index, ShouldBeGreaterThan, out[i-1].Index)
			}
		})
	})
}
