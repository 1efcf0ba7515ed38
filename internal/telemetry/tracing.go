package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "opsbridge"
	ServiceVersion = "0.1.0"
)

// InitTracing installs an OTLP gRPC trace exporter as the global tracer
// provider. When enabled is false the global no-op provider stays in place and
// the returned shutdown function does nothing.
func InitTracing(ctx context.Context, enabled bool, component string) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	resource := sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName+"-"+component),
		semconv.ServiceVersionKey.String(ServiceVersion),
	)

	traceExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(resource),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracerProvider.Shutdown(ctx)
	}, nil
}

// ForceFlush exports spans still buffered by the global SDK tracer provider.
// It is a no-op when tracing is disabled.
func ForceFlush(ctx context.Context) error {
	if tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		return tp.ForceFlush(ctx)
	}
	return nil
}

// Tracer returns the opsbridge tracer from the current global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(serviceName)
}
