package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Options struct {
	Service string
	Env     string
	// Exporter is one of "none", "stdout", "otlp".
	Exporter     string
	OTLPEndpoint string
	SampleRatio  float64
	// Writer receives stdout spans; defaults to os.Stdout.
	Writer io.Writer
}

// Init installs the global tracer provider and propagator. The returned func
// flushes and stops the provider.
func Init(ctx context.Context, opts Options) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	exporter, err := newExporter(ctx, opts)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		return func(context.Context) error { return nil }, nil
	}

	ratio := opts.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", opts.Service),
			attribute.String("deployment.environment", opts.Env),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, opts Options) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Exporter)) {
	case "", "none":
		return nil, nil
	case "stdout":
		w := opts.Writer
		if w == nil {
			w = os.Stdout
		}
		return stdouttrace.New(stdouttrace.WithWriter(w))
	case "otlp":
		clientOpts := []otlptracehttp.Option{}
		if opts.OTLPEndpoint != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithEndpointURL(opts.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, clientOpts...)
	default:
		return nil, fmt.Errorf("tracing: unknown exporter %q", opts.Exporter)
	}
}
