package instrumentation

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer of every span started here
const TracerName = "github.com/teemow/gdrive-endpoint"

// Span attribute keys
const (
	SpanAttrTool       = "mcp.tool"
	SpanAttrAccount    = "mcp.account"
	SpanAttrMethod     = "drive.method"
	SpanAttrResource   = "drive.resource"
	SpanAttrOperation  = "drive.operation"
	SpanAttrTarget     = "drive.target"
	SpanAttrStatusCode = "http.response.status_code"
)

// SpanAttributeBuilder collects optional span attributes. Empty values are
// skipped.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder returns an empty builder
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 4)}
}

func (b *SpanAttributeBuilder) add(key, value string) *SpanAttributeBuilder {
	if value != "" {
		b.attrs = append(b.attrs, attribute.String(key, value))
	}
	return b
}

// WithAccount adds the account name
func (b *SpanAttributeBuilder) WithAccount(account string) *SpanAttributeBuilder {
	return b.add(SpanAttrAccount, account)
}

// WithOperation adds the endpoint operation, e.g. files.get
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	return b.add(SpanAttrOperation, operation)
}

// WithTarget adds the file or drive ID a call addresses
func (b *SpanAttributeBuilder) WithTarget(id string) *SpanAttributeBuilder {
	return b.add(SpanAttrTarget, id)
}

// Build returns the attributes
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartToolSpan starts the server span of an MCP tool call, named
// tool.<name>
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartDriveSpan starts the client span of a Drive request, named
// drive.<resource>.<method>. IDs never appear in the name.
func StartDriveSpan(ctx context.Context, method, resource string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String(SpanAttrMethod, method),
		attribute.String(SpanAttrResource, resource),
	}, attrs...)
	return tracer().Start(ctx, "drive."+resource+"."+strings.ToLower(method),
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanStatusCode records the HTTP status of a Drive response. Zero means
// no response was received and is not recorded.
func SetSpanStatusCode(span trace.Span, code int) {
	if code != 0 {
		span.SetAttributes(attribute.Int(SpanAttrStatusCode, code))
	}
}

// SetSpanError records err and marks the span failed
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span OK
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
