package drive_tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/server"
	"github.com/teemow/gdrive-endpoint/internal/tools/common"
)

type verbFunc func(e *endpoint.Endpoint, ctx context.Context, url, options any) (endpoint.Result, error)

// requestVerbs are the generic dispatchers, keyed by HTTP method
var requestVerbs = []struct {
	method string
	call   verbFunc
}{
	{http.MethodGet, (*endpoint.Endpoint).Get},
	{http.MethodPost, (*endpoint.Endpoint).Post},
	{http.MethodPut, (*endpoint.Endpoint).Put},
	{http.MethodPatch, (*endpoint.Endpoint).Patch},
	{http.MethodDelete, (*endpoint.Endpoint).Delete},
}

func requestTool(method string) mcp.Tool {
	verb := strings.ToLower(method)
	return mcp.NewTool("drive_request_"+verb,
		mcp.WithDescription(fmt.Sprintf(
			"Send a raw %s request to the Drive v3 API. url is a path relative to the API root "+
				"(\"/files\") or a request object {path, params, body}. When url is a path, options "+
				"holding path, params or body is used as the request object; any other options value "+
				"becomes the request body.", method)),
		mcp.WithReadOnlyHintAnnotation(method == http.MethodGet),
		mcp.WithDestructiveHintAnnotation(method == http.MethodDelete),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithAny("url",
			mcp.Description("Path string or request object {path, params, body}"),
		),
		mcp.WithAny("options",
			mcp.Description("Request object {path, params, body} or the request body"),
		),
	)
}

func requestHandler(method string, call verbFunc, sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		url, options := args["url"], args["options"]
		if url == nil && options == nil {
			return mcp.NewToolResultError("url or options is required"), nil
		}

		ep, err := endpointFor(ctx, sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := call(ep, ctx, url, options)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s request failed: %v", method, err)), nil
		}
		return common.JSONResult(result), nil
	}
}

// registerRequestTools registers drive_request_<verb>. Only GET is
// available in read-only mode.
func registerRequestTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	for _, v := range requestVerbs {
		if readOnly && v.method != http.MethodGet {
			continue
		}
		tool := requestTool(v.method)
		s.AddTool(tool, common.InstrumentedToolHandlerWithOperation(
			tool.Name, "request", strings.ToLower(v.method), sc, requestHandler(v.method, v.call, sc)))
	}
}
