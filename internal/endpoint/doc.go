// Package endpoint maps the Google Drive REST API v3 onto a set of
// same-shaped Go calls.
//
// Every Drive operation (files.get, permissions.create, drives.hide, ...) is a
// method on one of the resource services of an Endpoint. A method builds the
// request path from its identifiers and hands a Descriptor to one of five
// verb dispatchers (Get, Post, Put, Patch, Delete). The dispatchers run the
// descriptor through Normalize and forward the result to a Transport, which
// performs the actual HTTP call. Binary operations (download, upload, export)
// go to dedicated Transport methods instead.
//
// The package performs no I/O, no identifier validation, no retries and no
// pagination. Identifiers are interpolated verbatim; malformed identifiers
// produce malformed paths that the remote API rejects.
//
// The static operation table returned by Operations describes every method
// (verb, path template, argument names) and can invoke it by name through
// Endpoint.Call. The MCP tools and the CLI are generated from it.
//
// Example usage:
//
//	e := endpoint.New(transport)
//
//	// GET /files/abc?fields=id,name
//	file, err := e.Files.Get(ctx, "abc", endpoint.Params{"fields": "id,name"})
//
//	// POST /files/f1/comments with a JSON body
//	comment, err := e.Comments.Create(ctx, "f1", nil, map[string]any{"content": "hi"})
//
//	// Generic form, resolved by Normalize
//	res, err := e.Post(ctx, "/files/f1/copy", map[string]any{"name": "Copy"})
package endpoint
