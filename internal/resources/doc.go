// Package resources provides MCP resources, read-only data sources that
// MCP clients can fetch:
//
//   - drive://operations lists the endpoint table: every operation with its
//     HTTP method, path template, arguments and whether it modifies Drive.
//   - user://profile describes the Google user behind the account the
//     request acts as. Over HTTP the account follows the session; over
//     stdio it is the server's default account.
package resources
