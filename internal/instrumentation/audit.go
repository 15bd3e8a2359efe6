package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation is one audited MCP tool call
type ToolInvocation struct {
	Tool string

	// Account is the configured account name (default, work, ...), never
	// the Google address behind it
	Account string

	// Resource and Operation name the endpoint operation the tool ran, e.g.
	// files and files.get. Empty for tools outside the endpoint table.
	Resource  string
	Operation string

	// Target is the Drive object the call addressed (a file or shared
	// drive ID). It is only logged when the audit logger includes targets.
	Target string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a tool call. Finish it with
// CompleteSuccess or CompleteWithError.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithAccount sets the account name
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithOperation sets the Drive resource and endpoint operation
func (ti *ToolInvocation) WithOperation(resource, operation string) *ToolInvocation {
	ti.Resource = resource
	ti.Operation = operation
	return ti
}

// WithTarget sets the ID of the Drive object the call addressed
func (ti *ToolInvocation) WithTarget(id string) *ToolInvocation {
	ti.Target = id
	return ti
}

// WithSpanContext copies the trace and span IDs of the current span
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

func (ti *ToolInvocation) complete(err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = err == nil
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.complete(err)
}

// CompleteSuccess marks the invocation as successful
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.complete(nil)
}

// Status returns StatusSuccess or StatusError
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the attributes of the audit record. The default account
// is left out to keep single-account logs short.
func (ti *ToolInvocation) LogAttrs(includeTarget bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	optional := []struct {
		key, value string
		keep       bool
	}{
		{"account", ti.Account, ti.Account != "default"},
		{"resource", ti.Resource, true},
		{"operation", ti.Operation, true},
		{"target", ti.Target, includeTarget},
		{"trace_id", ti.TraceID, true},
		{"span_id", ti.SpanID, true},
		{"error", ti.Error, true},
	}
	for _, o := range optional {
		if o.value != "" && o.keep {
			attrs = append(attrs, slog.String(o.key, o.value))
		}
	}
	return attrs
}

// AuditLogger writes one record per tool invocation
type AuditLogger struct {
	logger         *slog.Logger
	includeTargets bool
	enabled        bool
}

// NewAuditLogger creates an enabled AuditLogger that leaves out targets
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates an AuditLogger from configuration
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:         logger.With(slog.String("component", "audit")),
		includeTargets: config.IncludeTargets,
		enabled:        config.Enabled,
	}
}

// LogToolInvocation logs tool_executed at info level for successful calls
// and tool_failed at warn level otherwise
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	level, msg := slog.LevelInfo, "tool_executed"
	if !ti.Success {
		level, msg = slog.LevelWarn, "tool_failed"
	}
	al.logger.LogAttrs(context.Background(), level, msg, ti.LogAttrs(al.includeTargets)...)
}
