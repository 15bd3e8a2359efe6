package endpoint

import "context"

// Endpoint exposes the Drive API through resource services and five verb
// dispatchers. It holds no mutable state and is safe for concurrent use.
type Endpoint struct {
	transport Transport

	Changes     *ChangesService
	Channels    *ChannelsService
	Comments    *CommentsService
	Files       *FilesService
	Permissions *PermissionsService
	Replies     *RepliesService
	Revisions   *RevisionsService
	Drives      *DrivesService
}

// New creates an Endpoint that sends every request through t.
func New(t Transport) *Endpoint {
	e := &Endpoint{transport: t}
	e.Changes = &ChangesService{e: e}
	e.Channels = &ChannelsService{e: e}
	e.Comments = &CommentsService{e: e}
	e.Files = &FilesService{e: e}
	e.Permissions = &PermissionsService{e: e}
	e.Replies = &RepliesService{e: e}
	e.Revisions = &RevisionsService{e: e}
	e.Drives = &DrivesService{e: e}
	return e
}

// Get normalizes (url, options) and issues a GET.
func (e *Endpoint) Get(ctx context.Context, url, options any) (Result, error) {
	return e.transport.GetRequest(ctx, Normalize(url, options))
}

// Post normalizes (url, options) and issues a POST.
func (e *Endpoint) Post(ctx context.Context, url, options any) (Result, error) {
	return e.transport.PostRequest(ctx, Normalize(url, options))
}

// Put normalizes (url, options) and issues a PUT.
func (e *Endpoint) Put(ctx context.Context, url, options any) (Result, error) {
	return e.transport.PutRequest(ctx, Normalize(url, options))
}

// Patch normalizes (url, options) and issues a PATCH.
func (e *Endpoint) Patch(ctx context.Context, url, options any) (Result, error) {
	return e.transport.PatchRequest(ctx, Normalize(url, options))
}

// Delete normalizes (url, options) and issues a DELETE.
func (e *Endpoint) Delete(ctx context.Context, url, options any) (Result, error) {
	return e.transport.DeleteRequest(ctx, Normalize(url, options))
}

// emptyBody is sent by the bare-path POST operations that carry no payload.
func emptyBody() map[string]any {
	return map[string]any{}
}
