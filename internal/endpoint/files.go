package endpoint

import "context"

// FilesService covers the files resource, including the binary transfers.
type FilesService struct {
	e *Endpoint
}

// Copy issues POST /files/{fileId}/copy.
func (s *FilesService) Copy(ctx context.Context, fileID string, params Params, body any) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: "/files/" + fileID + "/copy", Params: params, Body: body}, nil)
}

// Create issues POST /files. Metadata only; use UploadFile for content.
func (s *FilesService) Create(ctx context.Context, params Params, body any) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: "/files", Params: params, Body: body}, nil)
}

// Delete issues DELETE /files/{fileId}.
func (s *FilesService) Delete(ctx context.Context, fileID string, params Params) (Result, error) {
	return s.e.Delete(ctx, Descriptor{Path: "/files/" + fileID, Params: params}, nil)
}

// EmptyTrash issues DELETE /files/trash.
func (s *FilesService) EmptyTrash(ctx context.Context) (Result, error) {
	return s.e.Delete(ctx, "/files/trash", nil)
}

// GenerateIDs issues GET /files/generateIds.
func (s *FilesService) GenerateIDs(ctx context.Context, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: "/files/generateIds", Params: params}, nil)
}

// Get issues GET /files/{fileId}.
func (s *FilesService) Get(ctx context.Context, fileID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: "/files/" + fileID, Params: params}, nil)
}

// List issues GET /files.
func (s *FilesService) List(ctx context.Context, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: "/files", Params: params}, nil)
}

// Update issues PATCH /files/{fileId}.
func (s *FilesService) Update(ctx context.Context, fileID string, params Params, body any) (Result, error) {
	return s.e.Patch(ctx, Descriptor{Path: "/files/" + fileID, Params: params, Body: body}, nil)
}

// Watch issues PATCH /files/{fileId}/watch.
func (s *FilesService) Watch(ctx context.Context, fileID string, params Params, body any) (Result, error) {
	return s.e.Patch(ctx, Descriptor{Path: "/files/" + fileID + "/watch", Params: params, Body: body}, nil)
}

// Export exports a Google Workspace document through /files/{fileId}/export.
// params must carry the target mimeType.
func (s *FilesService) Export(ctx context.Context, fileID string, params Params) (Result, error) {
	return s.e.transport.ExportFile(ctx, ExportRequest{
		FileID: fileID,
		Path:   "/files/" + fileID + "/export",
		Params: params,
	})
}

// DownloadFile stores the content of a Drive file in the file store.
func (s *FilesService) DownloadFile(ctx context.Context, fileID string) (Result, error) {
	return s.e.transport.DownloadFile(ctx, DownloadRequest{FileID: fileID})
}

// UploadFile uploads the stored file storeFileID to Drive as name, optionally
// inside folderID.
func (s *FilesService) UploadFile(ctx context.Context, storeFileID, name, mimeType, folderID string) (Result, error) {
	return s.e.transport.UploadFile(ctx, UploadRequest{
		FileID:   storeFileID,
		Name:     name,
		MimeType: mimeType,
		FolderID: folderID,
	})
}

// DownloadExportLink stores the file's export for mimeType, read from its
// exportLinks.
func (s *FilesService) DownloadExportLink(ctx context.Context, fileID, mimeType string) (Result, error) {
	return s.e.transport.DownloadExportLink(ctx, ExportLinkRequest{FileID: fileID, MimeType: mimeType})
}
