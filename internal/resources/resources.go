package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/google"
	"github.com/teemow/gdrive-endpoint/internal/server"
)

const (
	// OperationsURI lists the endpoint table
	OperationsURI = "drive://operations"

	// ProfileURI describes the user behind the current account
	ProfileURI = "user://profile"
)

// getUserInfo is swapped in tests
var getUserInfo = func(ctx context.Context, account string) (*google.UserInfo, error) {
	return google.GetUserInfo(ctx, account)
}

// operationInfo is the published form of an endpoint operation
type operationInfo struct {
	Name        string   `json:"name"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Arguments   []string `json:"arguments,omitempty"`
	Params      bool     `json:"params"`
	Body        bool     `json:"body"`
	ReadOnly    bool     `json:"readOnly"`
	Description string   `json:"description"`
	Note        string   `json:"note,omitempty"`
}

// RegisterResources registers all resources with the MCP server
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	operationsResource := mcp.NewResource(
		OperationsURI,
		"Drive Operations",
		mcp.WithResourceDescription("The Drive v3 operations this server can call"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(operationsResource, handleOperations)

	profileResource := mcp.NewResource(
		ProfileURI,
		"Current User Profile",
		mcp.WithResourceDescription("Information about the Google account the session acts as"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	return nil
}

func handleOperations(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ops := endpoint.Operations()
	infos := make([]operationInfo, 0, len(ops))
	for _, op := range ops {
		infos = append(infos, operationInfo{
			Name:        op.Name,
			Method:      op.Method,
			Path:        op.Path,
			Arguments:   op.Arguments,
			Params:      op.HasParams,
			Body:        op.HasBody,
			ReadOnly:    op.ReadOnly,
			Description: op.Description,
			Note:        op.Note,
		})
	}
	return jsonContents(request.Params.URI, map[string]any{
		"operations": infos,
		"total":      len(infos),
	})
}

// accountFor returns the account bound to the request, falling back to the
// server's default account
func accountFor(ctx context.Context, sc *server.ServerContext) string {
	if account, ok := server.AccountFromContext(ctx); ok {
		return account
	}
	return sc.DefaultAccount()
}

func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := accountFor(ctx, sc)

	profile := map[string]any{
		"account":   account,
		"connected": sc.HasTokenForAccount(account),
	}
	if !sc.HasTokenForAccount(account) {
		profile["hint"] = google.GetAuthenticationErrorMessage(account)
		return jsonContents(request.Params.URI, profile)
	}

	info, err := getUserInfo(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile for account %s: %w", account, err)
	}
	profile["email"] = info.Email
	profile["name"] = info.Name
	profile["verifiedEmail"] = info.VerifiedEmail
	if info.Domain != "" {
		profile["hostedDomain"] = info.Domain
	}
	return jsonContents(request.Params.URI, profile)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
