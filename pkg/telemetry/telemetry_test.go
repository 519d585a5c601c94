package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given telemetry init", t, func() {
		ctx := context.Background()

		Convey("When tracing is disabled", func() {
			shutdown, err := Init(ctx)
			So(err, ShouldBeNil)

			Convey("Then spans are no-ops and shutdown is safe", func() {
				_, span := Start(ctx, "noop")
				End(span, nil)
				So(shutdown(ctx), ShouldBeNil)
			})
		})

		Convey("When tracing is enabled", func() {
			var buf bytes.Buffer
			shutdown, err := Init(ctx, WithEnabled(true), WithWriter(&buf))
			So(err, ShouldBeNil)

			_, span := Start(ctx, "pipeline.normalize", attribute.String("lab", "books"))
			End(span, errors.New("boom"))

			Convey("Then the span is exported", func() {
				So(buf.String(), ShouldContainSubstring, "pipeline.normalize")
				So(buf.String(), ShouldContainSubstring, "boom")
				So(shutdown(ctx), ShouldBeNil)
			})
		})
	})
}
