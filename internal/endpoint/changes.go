package endpoint

import "context"

// ChangesService covers the changes resource.
type ChangesService struct {
	e *Endpoint
}

// GetStartPageToken issues GET /changes/startPageToken.
func (s *ChangesService) GetStartPageToken(ctx context.Context, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: "/changes/startPageToken", Params: params}, nil)
}

// List issues GET /changes.
func (s *ChangesService) List(ctx context.Context, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: "/changes", Params: params}, nil)
}

// Watch issues POST /changes/watch. Only query parameters are sent.
func (s *ChangesService) Watch(ctx context.Context, params Params) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: "/changes/watch", Params: params}, nil)
}

// ChannelsService covers the channels resource.
type ChannelsService struct {
	e *Endpoint
}

// Stop issues POST /channels/stop with the channel as body.
func (s *ChannelsService) Stop(ctx context.Context, body any) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: "/channels/stop", Body: body}, nil)
}
