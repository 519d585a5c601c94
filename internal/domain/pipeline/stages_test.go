package pipeline_test

import (
	"context"
	"math/rand"
	"strconv"
	"testing"
	"time"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

type row struct {
	pos  int
	isbn string
}

func isbnKey(r row) (string, bool) { return r.isbn, r.isbn != "" }

func randomRows(rng *rand.Rand, n int) []row {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{pos: i, isbn: strconv.Itoa(rng.Intn(n/2 + 1))}
	}
	return rows
}

func TestDedupe(t *testing.T) {
	Convey("Given records with repeated keys", t, func() {
		ctx := context.Background()

		Convey("When the isbn scenario is deduped", func() {
			in := []row{{0, "1"}, {1, "1"}, {2, "2"}}
			out := pipeline.Dedupe(ctx, in, isbnKey, nil)

			Convey("Then the first of each key survives", func() {
				So(out, ShouldResemble, []row{{0, "1"}, {2, "2"}})
			})
		})

		Convey("When random inputs are deduped", func() {
			rng := rand.New(rand.NewSource(7))
			for trial := 0; trial < 50; trial++ {
				in := randomRows(rng, 1+rng.Intn(60))
				out := pipeline.Dedupe(ctx, in, isbnKey, nil)

				first := map[string]int{}
				for _, r := range in {
					if _, ok := first[r.isbn]; !ok {
						first[r.isbn] = r.pos
					}
				}
				seen := map[string]bool{}
				for i, r := range out {
					So(seen[r.isbn], ShouldBeFalse)
					seen[r.isbn] = true
					So(r.pos, ShouldEqual, first[r.isbn])
					if i > 0 {
						So(r.pos, ShouldBeGreaterThan, out[i-1].pos)
					}
				}
				So(len(out), ShouldEqual, len(first))
			}
		})

		Convey("When some records have no key", func() {
			in := []row{{0, ""}, {1, ""}, {2, "a"}}
			So(len(pipeline.Dedupe(ctx, in, isbnKey, nil)), ShouldEqual, 3)
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given random inputs and a predicate", t, func() {
		rng := rand.New(rand.NewSource(11))
		even := func(r row) bool { n, _ := strconv.Atoi(r.isbn); return n%2 == 0 }

		Convey("Then the output is exactly the matching subsequence", func() {
			for trial := 0; trial < 50; trial++ {
				in := randomRows(rng, 1+rng.Intn(60))
				out := pipeline.Filter(in, even)

				var want []row
				for _, r := range in {
					if even(r) {
						want = append(want, r)
					}
				}
				if want == nil {
					want = []row{}
				}
				So(out, ShouldResemble, want)
			}
		})
	})
}

func TestLimit(t *testing.T) {
	Convey("Given a slice", t, func() {
		in := []int{1, 2, 3, 4}
		So(pipeline.Limit(in, 2), ShouldResemble, []int{1, 2})
		So(pipeline.Limit(in, 0), ShouldResemble, in)
		So(pipeline.Limit(in, 10), ShouldResemble, in)
	})
}

func TestGroup(t *testing.T) {
	Convey("Given books by author", t, func() {
		books := []row{{0, "Mann"}, {1, "Kafka"}, {2, "Mann"}, {3, "Hesse"}, {4, "Mann"}, {5, "Kafka"}}
		g := pipeline.Group(books, func(r row) string { return r.isbn })

		Convey("Then keys keep first-seen order and members keep input order", func() {
			So(g.Keys, ShouldResemble, []string{"Mann", "Kafka", "Hesse"})
			So(g.Len(), ShouldEqual, 3)
			So(g.Members["Mann"], ShouldResemble, []row{{0, "Mann"}, {2, "Mann"}, {4, "Mann"}})
		})

		Convey("Then SortBySize orders ascending without touching the original", func() {
			s := g.SortBySize()
			So(s.Keys, ShouldResemble, []string{"Hesse", "Kafka", "Mann"})
			So(g.Keys[0], ShouldEqual, "Mann")
		})
	})
}

func TestExtent(t *testing.T) {
	Convey("Given normalized records", t, func() {
		mk := func(y int, cases float64) model.NormalizedRecord {
			return model.NormalizedRecord{Values: map[string]model.Value{
				"year":  model.DateValue(time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)),
				"cases": model.NumberValue(cases),
			}}
		}
		recs := []model.NormalizedRecord{mk(2004, 50), mk(1990, 1200), mk(2017, 80), {}}

		Convey("Then Extent skips records without the field", func() {
			lo, hi, ok := pipeline.Extent(recs, func(r model.NormalizedRecord) (float64, bool) { return r.Number("cases") })
			So(ok, ShouldBeTrue)
			So(lo, ShouldEqual, 50)
			So(hi, ShouldEqual, 1200)
		})

		Convey("Then TimeExtent spans the dates", func() {
			lo, hi, ok := pipeline.TimeExtent(recs, func(r model.NormalizedRecord) (time.Time, bool) { return r.Time("year") })
			So(ok, ShouldBeTrue)
			So(lo.Year(), ShouldEqual, 1990)
			So(hi.Year(), ShouldEqual, 2017)
		})

		Convey("Then an empty input has no extent", func() {
			_, _, ok := pipeline.Extent(nil, func(r model.NormalizedRecord) (float64, bool) { return r.Number("cases") })
			So(ok, ShouldBeFalse)
		})
	})
}
