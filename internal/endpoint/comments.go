package endpoint

import "context"

// CommentsService covers /files/{fileId}/comments and its replies.
type CommentsService struct {
	e *Endpoint
}

func commentsPath(fileID string) string {
	return "/files/" + fileID + "/comments"
}

// Create issues POST /files/{fileId}/comments.
func (s *CommentsService) Create(ctx context.Context, fileID string, params Params, body any) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: commentsPath(fileID), Params: params, Body: body}, nil)
}

// Delete issues DELETE /files/{fileId}/comments/{commentId}.
func (s *CommentsService) Delete(ctx context.Context, fileID, commentID string) (Result, error) {
	return s.e.Delete(ctx, commentsPath(fileID)+"/"+commentID, nil)
}

// Get issues GET /files/{fileId}/comments/{commentId}.
func (s *CommentsService) Get(ctx context.Context, fileID, commentID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: commentsPath(fileID) + "/" + commentID, Params: params}, nil)
}

// List issues GET /files/{fileId}/comments.
func (s *CommentsService) List(ctx context.Context, fileID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: commentsPath(fileID), Params: params}, nil)
}

// Update issues PATCH /files/{fileId}/comments/{commentId}.
func (s *CommentsService) Update(ctx context.Context, fileID, commentID string, params Params, body any) (Result, error) {
	return s.e.Patch(ctx, Descriptor{Path: commentsPath(fileID) + "/" + commentID, Params: params, Body: body}, nil)
}

// RepliesService covers /files/{fileId}/comments/{commentId}/replies.
type RepliesService struct {
	e *Endpoint
}

func repliesPath(fileID, commentID string) string {
	return commentsPath(fileID) + "/" + commentID + "/replies"
}

// Create issues POST /files/{fileId}/comments/{commentId}/replies.
func (s *RepliesService) Create(ctx context.Context, fileID, commentID string, params Params, body any) (Result, error) {
	return s.e.Post(ctx, Descriptor{Path: repliesPath(fileID, commentID), Params: params, Body: body}, nil)
}

// Delete issues DELETE /files/{fileId}/comments/{commentId}/replies/{replyId}.
func (s *RepliesService) Delete(ctx context.Context, fileID, commentID, replyID string, params Params) (Result, error) {
	return s.e.Delete(ctx, Descriptor{Path: repliesPath(fileID, commentID) + "/" + replyID, Params: params}, nil)
}

// Get issues GET /files/{fileId}/comments/{commentId}/replies/{replyId}.
func (s *RepliesService) Get(ctx context.Context, fileID, commentID, replyID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: repliesPath(fileID, commentID) + "/" + replyID, Params: params}, nil)
}

// List issues GET /files/{fileId}/comments/{commentId}/replies.
func (s *RepliesService) List(ctx context.Context, fileID, commentID string, params Params) (Result, error) {
	return s.e.Get(ctx, Descriptor{Path: repliesPath(fileID, commentID), Params: params}, nil)
}

// Update issues PATCH /files/{fileId}/comments/{commentId}/replies/{replyId}.
func (s *RepliesService) Update(ctx context.Context, fileID, commentID, replyID string, params Params, body any) (Result, error) {
	return s.e.Patch(ctx, Descriptor{Path: repliesPath(fileID, commentID) + "/" + replyID, Params: params, Body: body}, nil)
}
