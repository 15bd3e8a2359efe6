// Package server hosts the Drive endpoint as an MCP server.
//
// # Key Components
//
// ServerContext owns one endpoint.Endpoint per Google account. Endpoints
// are built lazily on first use from the account's stored token and cached
// until the account is disconnected or its token is rejected. A rejected
// token is refreshed once; when that fails the token is removed and the
// account has to be authorized again.
//
// HTTPServer serves the streamable HTTP transport at /mcp, Google's OAuth
// redirect at /callback and the Kubernetes probes (/healthz, /readyz,
// /healthz/detailed). Clients pick an account with the X-Drive-Account
// header; SessionIDManager remembers it for the rest of the MCP session.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
