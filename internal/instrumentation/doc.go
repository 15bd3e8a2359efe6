// Package instrumentation wires OpenTelemetry metrics and traces into the
// Drive endpoint and the MCP server, and writes the tool audit log.
//
// Metrics:
//   - drive_requests_total, drive_request_duration_seconds: by method,
//     resource and status. Transfers use DOWNLOAD, EXPORT, EXPORT_LINK or
//     UPLOAD as their method label.
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: by tool and
//     status, plus account when METRICS_DETAILED_LABELS is set
//   - http_requests_total, http_request_duration_seconds: the streamable
//     HTTP transport
//   - active_sessions: sessions held by the session manager
//   - oauth_events_total: callback and refresh events by result
//
// Spans are named tool.<name> for tool calls and drive.<resource>.<method>
// for Drive requests. File IDs only appear as attributes.
//
// The environment selects the exporters:
//
//	INSTRUMENTATION_ENABLED         default true
//	METRICS_EXPORTER                prometheus, otlp or stdout
//	TRACING_EXPORTER                otlp, stdout or none
//	OTEL_EXPORTER_OTLP_ENDPOINT     host:port
//	OTEL_TRACES_SAMPLER_ARG         0.0 to 1.0, default 0.1
//	AUDIT_LOGGING_INCLUDE_TARGETS   log file IDs in the audit log
//
// Typical use:
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordDriveRequest(ctx, "GET", "files", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
