// Package google_tools provides MCP tools for Google OAuth authentication.
//
// This package registers tools that let AI assistants:
//   - Get the OAuth authorization URL of an account (google_get_auth_url)
//   - Save the authorization code to complete authentication (google_save_auth_code)
//   - Revoke an account's authorization (google_disconnect)
//   - Show the Google user behind an account (google_user_info)
//   - List the connected accounts (google_list_accounts)
//
// The OAuth flow:
//  1. A Drive tool fails because the account has no token
//  2. Call google_get_auth_url to get the authorization URL
//  3. User visits the URL and authorizes access
//  4. User provides the authorization code, or the HTTP transport's
//     /callback receives it directly
//  5. Call google_save_auth_code with the code to save the token
//
// Saved tokens are refreshed as needed. Saving or revoking a token drops
// the account's cached Drive endpoint.
package google_tools
