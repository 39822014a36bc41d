package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func TestInitStdoutAndPropagation(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	shutdown, err := Init(ctx, Options{Service: "market-test", Env: "test", Exporter: "stdout", Writer: &buf})
	require.NoError(t, err)

	spanCtx, span := otel.Tracer("test").Start(ctx, "AddItem")
	headers := InjectKafkaHeaders(spanCtx, nil)
	span.End()

	traceID := trace.SpanContextFromContext(spanCtx).TraceID().String()
	var traceparent string
	for _, h := range headers {
		if h.Key == "traceparent" {
			traceparent = string(h.Value)
		}
	}
	assert.Contains(t, traceparent, traceID)

	require.NoError(t, shutdown(ctx))
	assert.Contains(t, buf.String(), "AddItem")
}

func TestInitNone(t *testing.T) {
	shutdown, err := Init(context.Background(), Options{Exporter: "none"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = Init(context.Background(), Options{Exporter: "zipkin"})
	assert.Error(t, err)
}
