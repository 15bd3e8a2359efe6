package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod   = "method"
	attrPath     = "path"
	attrStatus   = "status"
	attrResource = "resource"
	attrEvent    = "event"
	attrResult   = "result"
	attrTool     = "tool"
	attrAccount  = "account"
)

// OAuth events counted by oauth_events_total
const (
	// OAuthEventCallback is a code exchange through the HTTP callback
	OAuthEventCallback = "callback"
	// OAuthEventRefresh is a token refresh after Drive rejected a token
	OAuthEventRefresh = "refresh"
)

var (
	// Drive calls range from metadata lookups to whole-file transfers
	driveBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 120}
	toolBuckets  = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	httpBuckets  = []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10}
)

// Metrics records the connector's counters and histograms. A zero Metrics
// records nothing.
type Metrics struct {
	driveRequests        metric.Int64Counter
	driveRequestDuration metric.Float64Histogram

	toolInvocations metric.Int64Counter
	toolDuration    metric.Float64Histogram

	httpRequests        metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	oauthEvents metric.Int64Counter

	// detailedLabels adds the account label to tool metrics
	detailedLabels bool
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}
	b := instrumentBuilder{meter: meter}

	m.driveRequests = b.counter("drive_requests_total", "Drive API requests by method, resource and status", "{request}")
	m.driveRequestDuration = b.histogram("drive_request_duration_seconds", "Drive API request duration in seconds", driveBuckets)
	m.toolInvocations = b.counter("mcp_tool_invocations_total", "MCP tool invocations by tool and status", "{invocation}")
	m.toolDuration = b.histogram("mcp_tool_duration_seconds", "MCP tool execution duration in seconds", toolBuckets)
	m.httpRequests = b.counter("http_requests_total", "HTTP requests served by route and status code", "{request}")
	m.httpRequestDuration = b.histogram("http_request_duration_seconds", "HTTP request duration in seconds", httpBuckets)
	m.activeSessions = b.upDownCounter("active_sessions", "Open streamable HTTP sessions", "{session}")
	m.oauthEvents = b.counter("oauth_events_total", "OAuth code exchanges and token refreshes by result", "{event}")

	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// instrumentBuilder creates instruments until the first failure
type instrumentBuilder struct {
	meter metric.Meter
	err   error
}

func (b *instrumentBuilder) counter(name, description, unit string) metric.Int64Counter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		b.err = fmt.Errorf("failed to create %s counter: %w", name, err)
	}
	return c
}

func (b *instrumentBuilder) histogram(name, description string, buckets []float64) metric.Float64Histogram {
	if b.err != nil {
		return nil
	}
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		b.err = fmt.Errorf("failed to create %s histogram: %w", name, err)
	}
	return h
}

func (b *instrumentBuilder) upDownCounter(name, description, unit string) metric.Int64UpDownCounter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		b.err = fmt.Errorf("failed to create %s counter: %w", name, err)
	}
	return c
}

// RecordDriveRequest records one Drive call. method is the HTTP verb or a
// transfer kind (TransferDownload, ...), resource comes from DriveResource.
func (m *Metrics) RecordDriveRequest(ctx context.Context, method, resource, status string, duration time.Duration) {
	if m == nil || m.driveRequests == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrResource, resource),
		attribute.String(attrStatus, status),
	)
	m.driveRequests.Add(ctx, 1, opt)
	m.driveRequestDuration.Record(ctx, duration.Seconds(), opt)
}

// RecordToolInvocation records an MCP tool invocation
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithAccount(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithAccount records an MCP tool invocation. The
// account label is only set when detailed labels are enabled.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m == nil || m.toolInvocations == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}
	opt := metric.WithAttributes(attrs...)
	m.toolInvocations.Add(ctx, 1, opt)
	m.toolDuration.Record(ctx, duration.Seconds(), opt)
}

// RecordHTTPRequest records a request served by the HTTP transport. path
// must be a route label, never the raw request path.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequests.Add(ctx, 1, opt)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), opt)
}

// RecordOAuthEvent counts an OAuth event (OAuthEventCallback,
// OAuthEventRefresh) with its result (OAuthResultSuccess, ...)
func (m *Metrics) RecordOAuthEvent(ctx context.Context, event, result string) {
	if m == nil || m.oauthEvents == nil {
		return
	}
	m.oauthEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrEvent, event),
		attribute.String(attrResult, result),
	))
}

// AddActiveSessions moves the open session gauge by delta
func (m *Metrics) AddActiveSessions(ctx context.Context, delta int64) {
	if m == nil || m.activeSessions == nil || delta == 0 {
		return
	}
	m.activeSessions.Add(ctx, delta)
}
