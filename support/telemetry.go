package support

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/weegigs/wee-store-go/we"
)

const (
	TracingNone      = "none"
	TracingConsole   = "console"
	TracingJaeger    = "jaeger"
	TracingHoneycomb = "honeycomb"
)

type UnsupportedTracingError struct {
	Tracing string
}

func (e *UnsupportedTracingError) Error() string {
	return fmt.Sprintf("unsupported tracing exporter %s", e.Tracing)
}

// TracerProvider installs the configured exporter as the global tracer
// provider. With tracing disabled it returns a nil provider and leaves the
// global no-op provider in place.
func TracerProvider(ctx context.Context, cfg Config, service string) (*sdktrace.TracerProvider, func(), error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)

	switch cfg.Tracing {
	case TracingNone, "":
		return nil, func() {}, nil
	case TracingConsole:
		exporter, err = we.ConsoleExporter()
	case TracingJaeger:
		exporter, err = we.JaegerExporter(cfg.JaegerEndpoint)
	case TracingHoneycomb:
		exporter, err = we.HoneycombExporter(ctx, cfg.HoneycombTeam, cfg.HoneycombDataset)
	default:
		return nil, nil, &UnsupportedTracingError{Tracing: cfg.Tracing}
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create %s exporter", cfg.Tracing)
	}

	provider := we.TracerProvider(service, exporter)
	otel.SetTracerProvider(provider)

	cleanup := func() {
		_ = provider.Shutdown(context.Background())
	}

	return provider, cleanup, nil
}
