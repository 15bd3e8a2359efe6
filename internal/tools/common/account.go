package common

import (
	"context"

	"github.com/teemow/gdrive-endpoint/internal/server"
)

// GetAccountFromArgs picks the account a tool call acts as.
//
// Priority order:
//  1. Account bound to the HTTP request (X-Drive-Account header or session)
//  2. Explicit "account" argument in request
//  3. fallback, usually the server's default account
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}, fallback string) string {
	if account, ok := server.AccountFromContext(ctx); ok {
		return account
	}

	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return fallback
}
