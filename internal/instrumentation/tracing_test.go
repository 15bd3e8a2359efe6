package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a recording tracer provider for the test
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[string]any {
	out := map[string]any{}
	for _, kv := range span.Attributes() {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithAccount("work").
		WithOperation("files.get").
		WithTarget("1A2b3C").
		Build()
	require.Len(t, attrs, 3)

	empty := NewSpanAttributeBuilder().WithAccount("").WithOperation("").WithTarget("").Build()
	assert.Empty(t, empty)
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	ctx, span := StartToolSpan(context.Background(), "drive_files_list",
		NewSpanAttributeBuilder().WithOperation("files.list").Build()...)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "tool.drive_files_list", got.Name())
	assert.Equal(t, trace.SpanKindServer, got.SpanKind())
	assert.Equal(t, codes.Ok, got.Status().Code)

	attrs := spanAttrs(got)
	assert.Equal(t, "drive_files_list", attrs[SpanAttrTool])
	assert.Equal(t, "files.list", attrs[SpanAttrOperation])
}

func TestStartDriveSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartDriveSpan(context.Background(), "PATCH", "comments",
		NewSpanAttributeBuilder().WithAccount("work").Build()...)
	SetSpanStatusCode(span, 403)
	SetSpanError(span, errors.New("forbidden"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "drive.comments.patch", got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "forbidden", got.Status().Description)
	require.Len(t, got.Events(), 1, "the error is recorded as an event")

	attrs := spanAttrs(got)
	assert.Equal(t, "PATCH", attrs[SpanAttrMethod])
	assert.Equal(t, "comments", attrs[SpanAttrResource])
	assert.Equal(t, "work", attrs[SpanAttrAccount])
	assert.EqualValues(t, 403, attrs[SpanAttrStatusCode])
}

func TestSetSpanStatusCode_NoResponse(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartDriveSpan(context.Background(), "download", "files")
	SetSpanStatusCode(span, 0)
	SetSpanError(span, nil)
	span.End()

	got := recorder.Ended()[0]
	assert.NotContains(t, spanAttrs(got), SpanAttrStatusCode)
	assert.Equal(t, codes.Unset, got.Status().Code)
	assert.Equal(t, "drive.files.download", got.Name())
}
