// Package common provides shared utilities for MCP tool implementations.
//
// It resolves the account a call acts as, decodes tool arguments, renders
// JSON results and wraps handlers with tracing, metrics and audit logging.
package common
