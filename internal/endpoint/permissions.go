package endpoint

import "context"

// PermissionsService covers /files/{fileId}/permissions.
type PermissionsService struct {
	e *Endpoint
}

func permissionsPath(fileID string) string {
	return "/files/" + fileID + "/permissions"
}

// Create issues POST /files/{fileId}/permissions.
func (s *PermissionsService) Create(ctx context.Context, fileID string, params Params, body any) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: permissionsPath(fileID), Params: params, Body: body}, nil)
}

// Delete issues DELETE /files/{fileId}/permissions/{permissionId}.
func (s *PermissionsService) Delete(ctx context.Context, fileID, permissionID string, params Params) (Result, error) {
	return s.e.Delete(ctx, Descriptor{Path: permissionsPath(fileID) + "/" + permissionID, Params: params}, nil)
}

// Get issues GET /files/{fileId}/permissions/{permissionId}.
func (s *PermissionsService) Get(ctx context.Context, fileID, permissionID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: permissionsPath(fileID) + "/" + permissionID, Params: params}, nil)
}

// List issues GET /files/{fileId}/permissions.
func (s *PermissionsService) List(ctx context.Context, fileID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: permissionsPath(fileID), Params: params}, nil)
}

// Update issues PATCH /files/{fileId}/permissions/{permissionId}.
func (s *PermissionsService) Update(ctx context.Context, fileID, permissionID string, params Params, body any) (Result, error) {
	return s.e.Patch(ctx, Descriptor{Path: permissionsPath(fileID) + "/" + permissionID, Params: params, Body: body}, nil)
}

// RevisionsService covers /files/{fileId}/revisions.
type RevisionsService struct {
	e *Endpoint
}

func revisionsPath(fileID string) string {
	return "/files/" + fileID + "/revisions"
}

// Delete issues DELETE /files/{fileId}/revisions/{revisionId}.
func (s *RevisionsService) Delete(ctx context.Context, fileID, revisionID string, params Params) (Result, error) {
	return s.e.Delete(ctx, Descriptor{Path: revisionsPath(fileID) + "/" + revisionID, Params: params}, nil)
}

// Get issues GET /files/{fileId}/revisions/{revisionId}.
func (s *RevisionsService) Get(ctx context.Context, fileID, revisionID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: revisionsPath(fileID) + "/" + revisionID, Params: params}, nil)
}

// List issues GET /files/{fileId}/revisions.
func (s *RevisionsService) List(ctx context.Context, fileID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: revisionsPath(fileID), Params: params}, nil)
}

// Update issues PATCH /files/{fileId}/revisions/{revisionId}.
func (s *RevisionsService) Update(ctx context.Context, fileID, revisionID string, params Params, body any) (Result, error) {
	return s.e.Patch(ctx, Descriptor{Path: revisionsPath(fileID) + "/" + revisionID, Params: params, Body: body}, nil)
}
