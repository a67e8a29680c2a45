package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceHandler_AddsSpanIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "verify")
	defer span.End()

	var buf bytes.Buffer
	NewJSON(&buf, "info").With("module", "auth").Info(ctx, "verified")

	out := buf.String()
	require.Contains(t, out, `"trace_id":"`+span.SpanContext().TraceID().String()+`"`)
	assert.Contains(t, out, `"span_id":"`+span.SpanContext().SpanID().String()+`"`)
	assert.Contains(t, out, `"module":"auth"`)
}

func TestTraceHandler_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	NewText(&buf, "info").Info(context.Background(), "plain")

	assert.Contains(t, buf.String(), "msg=plain")
	assert.NotContains(t, buf.String(), "trace_id")
}
