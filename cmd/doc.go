// Package cmd implements the command-line interface for gdrive-endpoint.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Drive tools for AI assistants
//   - call: Call one Drive operation by name and print the JSON result
//   - request: Send a raw GET/POST/PUT/PATCH/DELETE to the Drive API
//   - operations: List the endpoint table
//   - auth: Connect, disconnect and list Google accounts
//   - init: Create the configuration file interactively
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Every command except version and generate-docs loads the YAML
// configuration first (see --config), applies environment overrides and
// sets up logging on stderr.
package cmd
