// Package telemetry sets up OpenTelemetry tracing for a single run.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/doeshing/sky-health/internal/version"
)

// Supported exporter names.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(context.Context) error

// NewTracerProvider builds a provider for exporter. Spans from the stdout
// exporter go to w (stderr when nil) so they never mix with report output.
func NewTracerProvider(exporter string, w io.Writer) (trace.TracerProvider, ShutdownFunc, error) {
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case ExporterNone, "":
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil

	case ExporterStdout:
		if w == nil {
			w = os.Stderr
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		res := resource.NewSchemaless(
			attribute.String("service.name", version.Name),
			attribute.String("service.version", version.Version),
		)
		// A syncer exports each span as it ends; the process is short-lived.
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exp),
			sdktrace.WithResource(res),
		)
		return tp, tp.Shutdown, nil

	default:
		return nil, nil, fmt.Errorf("unknown trace exporter: %q", exporter)
	}
}
