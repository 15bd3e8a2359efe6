package endpoint

import "context"

// DrivesService covers shared drives.
//
// Delete and Update use POST as the connector always has, even though the
// Drive API documents DELETE and PATCH for them.
type DrivesService struct {
	e *Endpoint
}

// Create issues POST /drives.
func (s *DrivesService) Create(ctx context.Context, params Params, body any) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: "/drives", Params: params, Body: body}, nil)
}

// Delete issues POST /drives/{driveId}.
func (s *DrivesService) Delete(ctx context.Context, driveID string) (Result, error) {
	return s.e.Post(ctx, "/drives/"+driveID, emptyBody())
}

// Get issues GET /drives/{driveId}.
func (s *DrivesService) Get(ctx context.Context, driveID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: "/drives/" + driveID, Params: params}, nil)
}

// Hide issues POST /drives/{driveId}/hide with an empty body.
func (s *DrivesService) Hide(ctx context.Context, driveID string) (Result, error) {
	return s.e.Post(ctx, "/drives/"+driveID+"/hide", emptyBody())
}

// List issues GET /drives.
func (s *DrivesService) List(ctx context.Context, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: "/drives", Params: params}, nil)
}

// Unhide issues POST /drives/{driveId}/unhide with an empty body.
func (s *DrivesService) Unhide(ctx context.Context, driveID string) (Result, error) {
	return s.e.Post(ctx, "/drives/"+driveID+"/unhide", emptyBody())
}

// Update issues POST /drives/{driveId}.
func (s *DrivesService) Update(ctx context.Context, driveID string, params Params, body any) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: "/drives/" + driveID, Params: params, Body: body}, nil)
}
