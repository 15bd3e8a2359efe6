package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/server"
	"github.com/teemow/gdrive-endpoint/internal/tools/common"
)

// optionalArgument reports positional arguments the transport defaults
// when empty: the upload name and type come from the stored file, the
// export link type defaults to PDF.
func optionalArgument(op endpoint.Operation, name string) bool {
	switch op.Name {
	case "files.uploadFile":
		return name != "fileId"
	case "files.downloadExportLink":
		return name == "mimeType"
	}
	return false
}

// argumentDescriptions documents the positional arguments of the table
var argumentDescriptions = map[string]string{
	"fileId":       "The ID of the file",
	"commentId":    "The ID of the comment",
	"replyId":      "The ID of the reply",
	"permissionId": "The ID of the permission",
	"revisionId":   "The ID of the revision",
	"driveId":      "The ID of the shared drive",
	"name":         "Name of the Drive file to create (default: the stored file's name)",
	"mimeType":     "MIME type of the content",
	"folderId":     "ID of the parent folder (default: My Drive root)",
}

// destructive reports operations that remove data
func destructive(op endpoint.Operation) bool {
	switch op.Action {
	case "delete", "emptyTrash":
		return true
	}
	return false
}

func operationTool(op endpoint.Operation) mcp.Tool {
	description := op.Description + " (" + op.Name + ")"
	if op.Note != "" {
		description += ". Note: " + op.Note
	}

	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithReadOnlyHintAnnotation(op.ReadOnly),
		mcp.WithDestructiveHintAnnotation(destructive(op)),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	}

	for _, name := range op.Arguments {
		desc := argumentDescriptions[name]
		if op.Name == "files.uploadFile" && name == "fileId" {
			desc = "ID of the file in the local file store to upload"
		}
		propOpts := []mcp.PropertyOption{mcp.Description(desc)}
		if !optionalArgument(op, name) {
			propOpts = append(propOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(name, propOpts...))
	}

	if op.HasParams {
		opts = append(opts, mcp.WithObject("params",
			mcp.Description("Query parameters of the request, e.g. {\"fields\": \"id,name\"}"),
		))
	}
	if op.HasBody {
		opts = append(opts, mcp.WithObject("body",
			mcp.Description("JSON request body"),
		))
	}

	return mcp.NewTool(ToolName(op), opts...)
}

// argsFromRequest binds tool arguments to an endpoint call
func argsFromRequest(op endpoint.Operation, args map[string]any) (endpoint.Args, error) {
	var a endpoint.Args

	a.Values = make(map[string]string, len(op.Arguments))
	for _, name := range op.Arguments {
		v := common.StringArg(args, name)
		if v == "" && !optionalArgument(op, name) {
			return a, fmt.Errorf("%s is required", name)
		}
		a.Values[name] = v
	}

	if op.HasParams {
		params, err := common.ObjectArg(args, "params")
		if err != nil {
			return a, err
		}
		if params != nil {
			a.Params = endpoint.Params(params)
		}
	}
	if op.HasBody {
		body, err := common.ObjectArg(args, "body")
		if err != nil {
			return a, err
		}
		if body != nil {
			a.Body = body
		}
	}
	return a, nil
}

func operationHandler(op endpoint.Operation, sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		callArgs, err := argsFromRequest(op, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		ep, err := endpointFor(ctx, sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := ep.Call(ctx, op.Name, callArgs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op.Name, err)), nil
		}
		return common.JSONResult(result), nil
	}
}

// registerOperationTools registers one tool per endpoint operation. Write
// operations are left out in read-only mode.
func registerOperationTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	seen := make(map[string]string)
	for _, op := range endpoint.Operations() {
		if readOnly && !op.ReadOnly {
			continue
		}
		name := ToolName(op)
		if other, ok := seen[name]; ok {
			return fmt.Errorf("tool name %s used by %s and %s", name, other, op.Name)
		}
		seen[name] = op.Name

		s.AddTool(operationTool(op), common.InstrumentedToolHandlerWithOperation(
			name, op.Resource, op.Name, sc, operationHandler(op, sc)))
	}
	return nil
}
