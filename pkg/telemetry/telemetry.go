// Package telemetry wires OpenTelemetry tracing for labviz.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by labviz spans.
const TracerName = "github.com/okian/labviz"

// ErrInit is returned when the tracer provider cannot be built.
var ErrInit = errors.New("telemetry init failed")

// Option configures Init.
type Option func(*settings)

type settings struct {
	enabled bool
	writer  io.Writer
	pretty  bool
}

// WithEnabled turns span export on. Disabled providers still hand out
// no-op tracers so call sites never branch.
func WithEnabled(enabled bool) Option {
	return func(s *settings) { s.enabled = enabled }
}

// WithWriter directs exported spans to w (stdout by default).
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithPrettyPrint indents exported spans.
func WithPrettyPrint() Option {
	return func(s *settings) { s.pretty = true }
}

// Init installs the global tracer provider and returns its shutdown func.
func Init(_ context.Context, opts ...Option) (func(context.Context) error, error) {
	s := settings{writer: os.Stdout}
	for _, opt := range opts {
		opt(&s)
	}

	if !s.enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(s.writer)}
	if s.pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the labviz tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Start opens a span named name with the given attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span (if any) and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
