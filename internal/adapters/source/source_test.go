package source_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/labviz/internal/adapters/source"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestResolveFormat(t *testing.T) {
	Convey("Given source specs", t, func() {
		Convey("Then the format is inferred from the extension", func() {
			f, err := source.Spec{Path: "data/HIV.CSV"}.ResolveFormat()
			So(err, ShouldBeNil)
			So(f, ShouldEqual, source.FormatCSV)

			f, err = source.Spec{URL: "https://example.com/books.tsv?raw=1"}.ResolveFormat()
			So(err, ShouldBeNil)
			So(f, ShouldEqual, source.FormatTSV)
		})

		Convey("Then an explicit format wins", func() {
			f, err := source.Spec{Path: "data.txt", Format: source.FormatJSON}.ResolveFormat()
			So(err, ShouldBeNil)
			So(f, ShouldEqual, source.FormatJSON)
		})

		Convey("Then unknown extensions are rejected", func() {
			_, err := source.Spec{Path: "data.txt"}.ResolveFormat()
			So(errors.Is(err, source.ErrFormat), ShouldBeTrue)
		})
	})
}

func TestLoadDelimited(t *testing.T) {
	Convey("Given delimited files", t, func() {
		dir := t.TempDir()
		l := source.NewLoader(source.WithBaseDir(dir))
		ctx := context.Background()

		Convey("When a CSV has a BOM and ragged rows", func() {
			writeFile(t, dir, "hiv.csv", []byte("\ufeffEntity,Code,Year,Cases\nChina,CHN,1990,1200\nUSA,USA,1990\n"))
			tbl, err := l.Load(ctx, source.Spec{Path: "hiv.csv"})

			Convey("Then the header is clean and short rows leave columns absent", func() {
				So(err, ShouldBeNil)
				So(tbl.Columns, ShouldResemble, []string{"Entity", "Code", "Year", "Cases"})
				So(len(tbl.Records), ShouldEqual, 2)
				So(tbl.Records[0]["Cases"], ShouldEqual, "1200")
				_, ok := tbl.Records[1]["Cases"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a TSV contains stray quotes", func() {
			writeFile(t, dir, "books.tsv", []byte("isbn\ttitle\n1\tThe \"Magic\" Mountain\n"))
			tbl, err := l.Load(ctx, source.Spec{Path: "books.tsv"})

			Convey("Then quotes are kept literally", func() {
				So(err, ShouldBeNil)
				So(tbl.Records[0]["title"], ShouldEqual, "The \"Magic\" Mountain")
			})
		})

		Convey("When a CSV breaks part way", func() {
			writeFile(t, dir, "bad.csv", []byte("a,b\n1,2\n3,x\"y\n5,6\n"))
			tbl, err := l.Load(ctx, source.Spec{Path: "bad.csv"})

			Convey("Then rows read so far are returned with ErrMalformed", func() {
				So(errors.Is(err, source.ErrMalformed), ShouldBeTrue)
				So(len(tbl.Records), ShouldEqual, 1)
				So(tbl.Records[0]["a"], ShouldEqual, "1")
			})
		})

		Convey("When the file is empty", func() {
			writeFile(t, dir, "empty.csv", nil)
			tbl, err := l.Load(ctx, source.Spec{Path: "empty.csv"})
			So(err, ShouldBeNil)
			So(tbl.Records, ShouldBeEmpty)
		})

		Convey("When the file does not exist", func() {
			tbl, err := l.Load(ctx, source.Spec{Path: "missing.csv"})

			Convey("Then the source is unreachable and yields nothing", func() {
				So(errors.Is(err, source.ErrUnreachable), ShouldBeTrue)
				So(tbl.Records, ShouldBeEmpty)
			})
		})

		Convey("When nothing is configured", func() {
			_, err := l.Load(ctx, source.Spec{Format: source.FormatCSV})
			So(errors.Is(err, source.ErrNoSource), ShouldBeTrue)
		})
	})
}

func TestLoadJSON(t *testing.T) {
	Convey("Given JSON sources", t, func() {
		dir := t.TempDir()
		l := source.NewLoader(source.WithBaseDir(dir))
		ctx := context.Background()

		Convey("When the file is an array of objects", func() {
			writeFile(t, dir, "data.json", []byte(`[{"name":"a","parsedDate":"2019-01-02","n":3},{"name":"b","extra":true}]`))
			tbl, err := l.Load(ctx, source.Spec{Path: "data.json"})

			Convey("Then values keep their JSON types and columns are the key union", func() {
				So(err, ShouldBeNil)
				So(len(tbl.Records), ShouldEqual, 2)
				So(tbl.Records[0]["n"], ShouldEqual, 3.0)
				So(tbl.Records[1]["extra"], ShouldEqual, true)
				So(tbl.Columns, ShouldResemble, []string{"n", "name", "parsedDate", "extra"})
			})
		})

		Convey("When the document is not an array", func() {
			writeFile(t, dir, "obj.json", []byte(`{"a":1}`))
			_, err := l.Load(ctx, source.Spec{Path: "obj.json"})
			So(errors.Is(err, source.ErrMalformed), ShouldBeTrue)
		})

		Convey("When the array is truncated", func() {
			writeFile(t, dir, "cut.json", []byte(`[{"a":1},{"a":2},{"a":`))
			tbl, err := l.Load(ctx, source.Spec{Path: "cut.json"})

			Convey("Then complete elements are returned with ErrMalformed", func() {
				So(errors.Is(err, source.ErrMalformed), ShouldBeTrue)
				So(len(tbl.Records), ShouldEqual, 2)
			})
		})
	})
}

func TestLoadURL(t *testing.T) {
	Convey("Given an HTTP server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/data.csv" {
				_, _ = w.Write([]byte("Code,Year\nCHN,1990\n"))
				return
			}
			http.NotFound(w, r)
		}))
		defer srv.Close()

		l := source.NewLoader(source.WithHTTPClient(srv.Client()))

		Convey("Then a reachable URL is decoded", func() {
			tbl, err := l.Load(context.Background(), source.Spec{URL: srv.URL + "/data.csv"})
			So(err, ShouldBeNil)
			So(len(tbl.Records), ShouldEqual, 1)
		})

		Convey("Then a non-200 response is unreachable", func() {
			_, err := l.Load(context.Background(), source.Spec{URL: srv.URL + "/gone.csv"})
			So(errors.Is(err, source.ErrUnreachable), ShouldBeTrue)
		})
	})
}

func TestLoadXLSX(t *testing.T) {
	Convey("Given an XLSX workbook", t, func() {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		So(f.SetSheetRow(sheet, "A2", &[]any{"isbn", "country"}), ShouldBeNil)
		So(f.SetSheetRow(sheet, "A3", &[]any{"978", "Germany"}), ShouldBeNil)
		So(f.SetSheetRow(sheet, "A5", &[]any{"979", "France"}), ShouldBeNil)
		var buf bytes.Buffer
		So(f.Write(&buf), ShouldBeNil)

		dir := t.TempDir()
		writeFile(t, dir, "books.xlsx", buf.Bytes())

		Convey("When it is loaded", func() {
			tbl, err := source.NewLoader().Load(context.Background(), source.Spec{Path: filepath.Join(dir, "books.xlsx")})

			Convey("Then leading and blank rows are skipped", func() {
				So(err, ShouldBeNil)
				So(tbl.Columns, ShouldResemble, []string{"isbn", "country"})
				So(len(tbl.Records), ShouldEqual, 2)
				So(tbl.Records[1]["country"], ShouldEqual, "France")
			})
		})

		Convey("When a missing sheet is requested", func() {
			_, err := source.NewLoader().Load(context.Background(), source.Spec{Path: filepath.Join(dir, "books.xlsx"), Sheet: "Nope"})
			So(errors.Is(err, source.ErrMalformed), ShouldBeTrue)
		})
	})
}
