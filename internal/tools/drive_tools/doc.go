// Package drive_tools exposes the Drive endpoint to MCP clients.
//
// Every row of the endpoint table becomes one tool named
// drive_<resource>_<action>, with the action in snake case:
//
//	drive_files_get({fileId: "abc", params: {fields: "id,name"}})
//	drive_permissions_create({fileId: "abc", body: {role: "reader", type: "anyone"}})
//	drive_files_export({fileId: "doc", params: {mimeType: "application/pdf"}})
//
// Path arguments are required strings; params and body are JSON objects.
// The generic tools drive_request_get, _post, _put, _patch and _delete take
// a raw url (a path or a {path, params, body} object) plus options and run
// them through the request normalizer. drive_batch runs several operations
// in order and reports each result.
//
// Binary content never travels through the tools directly: downloads and
// exports land in the local file store, uploads read from it. The
// drive_store_* tools list, read, put and delete stored files.
//
// In read-only mode only the operations that do not modify Drive are
// registered, drive_batch rejects write steps and drive_store_put and
// drive_store_delete are left out.
//
// All tools accept an optional 'account'. A request bound to an account by
// the HTTP transport overrides it.
package drive_tools
