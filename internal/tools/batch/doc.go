// Package batch runs several endpoint operations in one MCP tool call.
//
// This package includes helpers for:
//   - Parsing parameters that accept a single value, an array or a JSON array
//   - Parsing the steps of a drive_batch call
//   - Running steps in order while collecting partial failures
//   - Formatting batch results in a consistent structure
package batch
