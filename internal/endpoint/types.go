package endpoint

import "context"

// Params holds query parameters. Values are scalars or slices of scalars;
// slices become repeated query keys.
type Params map[string]any

// Result is the decoded JSON response of a Drive call.
type Result map[string]any

// Descriptor is the canonical request handed to a Transport.
type Descriptor struct {
	// Path is the request path relative to the Drive API base URL, or an
	// absolute https:// URL
	Path string `json:"path,omitempty"`

	// Params becomes the query string
	Params Params `json:"params,omitempty"`

	// Body becomes the JSON request payload
	Body any `json:"body,omitempty"`
}

// DownloadRequest asks the transport to store the content of a Drive file.
type DownloadRequest struct {
	FileID string `json:"fileId"`
}

// UploadRequest asks the transport to upload a stored file to Drive.
type UploadRequest struct {
	// FileID identifies the file in the local file store, not in Drive
	FileID   string `json:"fileId"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	// FolderID is the optional parent folder in Drive
	FolderID string `json:"folderId,omitempty"`
}

// ExportRequest asks the transport to export a Google Workspace document.
type ExportRequest struct {
	FileID string `json:"fileId"`
	Path   string `json:"path"`
	Params Params `json:"params,omitempty"`
}

// ExportLinkRequest asks the transport to download one of the file's
// exportLinks.
type ExportLinkRequest struct {
	FileID   string `json:"fileId"`
	MimeType string `json:"mimeType"`
}

// RequestTransport executes generic REST calls. Each method corresponds to
// one HTTP verb.
type RequestTransport interface {
	GetRequest(ctx context.Context, d Descriptor) (Result, error)
	PostRequest(ctx context.Context, d Descriptor) (Result, error)
	PutRequest(ctx context.Context, d Descriptor) (Result, error)
	PatchRequest(ctx context.Context, d Descriptor) (Result, error)
	DeleteRequest(ctx context.Context, d Descriptor) (Result, error)
}

// FileTransport moves binary content between Drive and the file store.
type FileTransport interface {
	DownloadFile(ctx context.Context, req DownloadRequest) (Result, error)
	UploadFile(ctx context.Context, req UploadRequest) (Result, error)
	ExportFile(ctx context.Context, req ExportRequest) (Result, error)
	DownloadExportLink(ctx context.Context, req ExportLinkRequest) (Result, error)
}

// Transport is the collaborator that performs network I/O, authentication
// and error surfacing for an Endpoint.
type Transport interface {
	RequestTransport
	FileTransport
}
