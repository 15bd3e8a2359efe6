package google_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/google"
	"github.com/teemow/gdrive-endpoint/internal/server"
	"github.com/teemow/gdrive-endpoint/internal/tools/common"
)

const accountDescription = "Account name (default: the server's default account). Used to manage multiple Google accounts."

// getUserInfo is swapped in tests
var getUserInfo = func(ctx context.Context, account string) (*google.UserInfo, error) {
	return google.GetUserInfo(ctx, account)
}

// RegisterGoogleTools registers all Google OAuth-related tools with the MCP server
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google Drive access for a specific account"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("google_get_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google Drive authentication for a specific account"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)
	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("google_save_auth_code", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	disconnectTool := mcp.NewTool("google_disconnect",
		mcp.WithDescription("Revoke the Google Drive authorization of an account and delete its stored token"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(disconnectTool, common.InstrumentedToolHandler("google_disconnect", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDisconnect(ctx, request, sc)
		}))

	userInfoTool := mcp.NewTool("google_user_info",
		mcp.WithDescription("Get the Google profile (email, name) of the user behind an account"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(userInfoTool, common.InstrumentedToolHandler("google_user_info", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUserInfo(ctx, request, sc)
		}))

	listAccountsTool := mcp.NewTool("google_list_accounts",
		mcp.WithDescription("List the accounts that have a stored Google Drive authorization"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listAccountsTool, common.InstrumentedToolHandler("google_list_accounts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			accounts, err := google.ListAccounts()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return common.JSONResult(map[string]any{
				"defaultAccount": sc.DefaultAccount(),
				"accounts":       accounts,
			}), nil
		}))

	return nil
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments(), sc.DefaultAccount())
	if err := google.ValidateAccountName(account); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	authURL := google.GetAuthURLForAccount(account)

	result := fmt.Sprintf(`To authorize Google Drive access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google Drive
4. Copy the authorization code

5. Call the google_save_auth_code tool with the code and account name to complete authentication`, account, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args, sc.DefaultAccount())

	authCode := common.StringArg(args, "authCode")
	if authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	if err := google.SaveTokenForAccount(ctx, account, authCode); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}
	// A cached endpoint still holds the previous token
	sc.ForgetAccount(account)

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'. The Drive tools can now be used with this account.", account)), nil
}

func handleDisconnect(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments(), sc.DefaultAccount())
	if !sc.HasTokenForAccount(account) {
		return mcp.NewToolResultError(fmt.Sprintf("account %s is not connected", account)), nil
	}

	if err := sc.Disconnect(ctx, account); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Account '%s' disconnected.", account)), nil
}

func handleUserInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments(), sc.DefaultAccount())
	if !sc.HasTokenForAccount(account) {
		return mcp.NewToolResultError(google.GetAuthenticationErrorMessage(account)), nil
	}

	info, err := getUserInfo(ctx, account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get user info for account %s: %v", account, err)), nil
	}
	return common.JSONResult(map[string]any{
		"account": account,
		"user":    info,
	}), nil
}
