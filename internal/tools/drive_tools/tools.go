package drive_tools

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/server"
	"github.com/teemow/gdrive-endpoint/internal/tools/common"
)

const accountDescription = "Account name (default: the server's default account). Used to manage multiple Google accounts."

// endpointFor returns the endpoint of the account the call acts as
func endpointFor(ctx context.Context, sc *server.ServerContext, args map[string]any) (*endpoint.Endpoint, error) {
	account := common.GetAccountFromArgs(ctx, args, sc.DefaultAccount())
	return sc.EndpointForAccount(account)
}

// ToolName returns the MCP tool name of an operation,
// e.g. drive_files_generate_ids for files.generateIds
func ToolName(op endpoint.Operation) string {
	return "drive_" + op.Resource + "_" + snakeCase(op.Action)
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RegisterDriveTools registers all Google Drive-related tools with the MCP server
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerOperationTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register operation tools: %w", err)
	}

	registerRequestTools(s, sc, readOnly)
	registerBatchTool(s, sc, readOnly)

	if err := registerStoreTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register store tools: %w", err)
	}

	return nil
}
