// Package drive is the transport behind the endpoint table: it performs the
// actual HTTP calls against the Google Drive REST API v3 for one account.
//
// Generic requests (GetRequest, PostRequest, ...) resolve the descriptor path
// against the API base URL, encode params as the query string and send the
// body, else the params, else an empty object as JSON for POST, PUT and
// PATCH. Responses are checked with googleapi.CheckResponse and decoded into
// an endpoint.Result.
//
// Binary transfers go through the Drive SDK and the file store:
//   - DownloadFile stores a file's content
//   - ExportFile stores the export of a Google Workspace document
//   - DownloadExportLink stores one of a file's exportLinks
//   - UploadFile creates a Drive file from a stored file
//
// Rejected credentials are reported as ErrUnauthorized and through the
// OnUnauthorized hook, which the server uses to refresh or disconnect the
// account.
//
// Example usage:
//
//	client, err := drive.NewClientForAccount(ctx, drive.Config{Account: "work", Store: store})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e := endpoint.New(client)
//	files, err := e.Files.List(ctx, endpoint.Params{"pageSize": 10})
package drive
