package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
	"github.com/teemow/gdrive-endpoint/internal/server"
)

// ToolHandler is the signature of an MCP tool handler
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a span, metrics and
// audit logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrument(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithOperation is like InstrumentedToolHandler but
// also records the Drive resource and operation (files, files.list) the tool
// runs, for the span and the audit log.
func InstrumentedToolHandlerWithOperation(toolName, resource, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrument(toolName, resource, operation, sc, handler)
}

func instrument(toolName, resource, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		account := GetAccountFromArgs(ctx, args, sc.DefaultAccount())
		target := targetOf(args)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithAccount(account).
			WithOperation(operation).
			WithTarget(target)
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()

		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithAccount(account).
			WithTarget(target)
		if operation != "" {
			invocation.WithOperation(resource, operation)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			resultErr := errors.New(resultText(result))
			invocation.CompleteWithError(resultErr)
			instrumentation.SetSpanError(span, resultErr)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			metrics.RecordToolInvocationWithAccount(ctx, toolName, status, account, duration)
		}
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

// targetKeys are the arguments that name the Drive object a tool addresses,
// most specific container first
var targetKeys = []string{"fileId", "driveId"}

func targetOf(args map[string]any) string {
	for _, key := range targetKeys {
		if id := StringArg(args, key); id != "" {
			return id
		}
	}
	return ""
}

// resultText returns the text of the first text content of a result
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return "tool returned an error result"
}
