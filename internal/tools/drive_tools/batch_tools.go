package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/server"
	"github.com/teemow/gdrive-endpoint/internal/tools/batch"
	"github.com/teemow/gdrive-endpoint/internal/tools/common"
)

const batchToolName = "drive_batch"

// stepChecker validates a step before it runs
type stepChecker func(step batch.Step) error

func checkStep(readOnly bool) stepChecker {
	return func(step batch.Step) error {
		op, ok := endpoint.Lookup(step.Operation)
		if !ok {
			return fmt.Errorf("%w: %s", endpoint.ErrUnknownOperation, step.Operation)
		}
		if readOnly && !op.ReadOnly {
			return fmt.Errorf("%s is a write operation and the server is read-only", op.Name)
		}
		return nil
	}
}

func batchHandler(sc *server.ServerContext, check stepChecker) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		steps, err := batch.ParseSteps(args["steps"])
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		ep, err := endpointFor(ctx, sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		results := batch.RunSteps(ctx, steps, func(ctx context.Context, step batch.Step) (any, error) {
			if err := check(step); err != nil {
				return nil, err
			}
			callArgs := endpoint.Args{Values: step.Args, Body: step.Body}
			if step.Params != nil {
				callArgs.Params = endpoint.Params(step.Params)
			}
			return ep.Call(ctx, step.Operation, callArgs)
		})

		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

// registerBatchTool registers drive_batch. In read-only mode steps naming
// write operations fail without being sent.
func registerBatchTool(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	tool := mcp.NewTool(batchToolName,
		mcp.WithDescription("Run several Drive operations in sequence and report the result of each. "+
			"A failing step does not stop the batch."),
		mcp.WithReadOnlyHintAnnotation(readOnly),
		mcp.WithDestructiveHintAnnotation(!readOnly),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithArray("steps",
			mcp.Required(),
			mcp.Description("Steps as {operation, args, params, body}, e.g. "+
				"[{\"operation\": \"files.get\", \"args\": {\"fileId\": \"abc\"}, \"params\": {\"fields\": \"id,name\"}}]"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"operation": map[string]any{"type": "string"},
					"args":      map[string]any{"type": "object"},
					"params":    map[string]any{"type": "object"},
					"body":      map[string]any{"type": "object"},
				},
				"required": []string{"operation"},
			}),
		),
	)

	s.AddTool(tool, common.InstrumentedToolHandlerWithOperation(
		batchToolName, "batch", "batch", sc, batchHandler(sc, checkStep(readOnly))))
}
