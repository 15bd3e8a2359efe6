package endpoint

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// MethodCustom marks operations served by the file transport rather than a
// verb dispatcher.
const MethodCustom = "CUSTOM"

var (
	// ErrUnknownOperation is returned by Call for names missing from the table
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidArguments is returned by Call when the arguments cannot be
	// bound to the operation
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Args carries the arguments of a call made by name.
type Args struct {
	// Values holds the positional string arguments keyed by name (fileId,
	// commentId, ...). Missing values are passed as empty strings.
	Values map[string]string
	Params Params
	Body   any
}

func (a Args) value(name string) string {
	return a.Values[name]
}

// Operation describes one entry of the endpoint table.
type Operation struct {
	// Name is resource.action, e.g. files.get
	Name     string
	Resource string
	Action   string
	// Method is the HTTP verb or MethodCustom
	Method string
	// Path is the path template with {name} placeholders
	Path string
	// Arguments are the ordered positional argument names
	Arguments   []string
	HasParams   bool
	HasBody     bool
	ReadOnly    bool
	Description string
	// Note flags a known deviation from the Drive API's documented contract
	Note string

	invoke func(ctx context.Context, e *Endpoint, a Args) (Result, error)
}

var operations = []Operation{
	// changes
	{
		Name: "changes.getStartPageToken", Method: "GET", Path: "/changes/startPageToken",
		HasParams: true, ReadOnly: true,
		Description: "Gets the starting pageToken for listing future changes",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Changes.GetStartPageToken(ctx, a.Params)
		},
	},
	{
		Name: "changes.list", Method: "GET", Path: "/changes",
		HasParams: true, ReadOnly: true,
		Description: "Lists the changes for a user or shared drive",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Changes.List(ctx, a.Params)
		},
	},
	{
		Name: "changes.watch", Method: "POST", Path: "/changes/watch",
		HasParams:   true,
		Description: "Subscribes to changes for a user",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Changes.Watch(ctx, a.Params)
		},
	},

	// channels
	{
		Name: "channels.stop", Method: "POST", Path: "/channels/stop",
		HasBody:     true,
		Description: "Stops watching resources through a channel",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Channels.Stop(ctx, a.Body)
		},
	},

	// comments
	{
		Name: "comments.create", Method: "POST", Path: "/files/{fileId}/comments",
		Arguments: []string{"fileId"}, HasParams: true, HasBody: true,
		Description: "Creates a comment on a file",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Comments.Create(ctx, a.value("fileId"), a.Params, a.Body)
		},
	},
	{
		Name: "comments.delete", Method: "DELETE", Path: "/files/{fileId}/comments/{commentId}",
		Arguments:   []string{"fileId", "commentId"},
		Description: "Deletes a comment",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Comments.Delete(ctx, a.value("fileId"), a.value("commentId"))
		},
	},
	{
		Name: "comments.get", Method: "GET", Path: "/files/{fileId}/comments/{commentId}",
		Arguments: []string{"fileId", "commentId"}, HasParams: true, ReadOnly: true,
		Description: "Gets a comment by ID",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Comments.Get(ctx, a.value("fileId"), a.value("commentId"), a.Params)
		},
	},
	{
		Name: "comments.list", Method: "GET", Path: "/files/{fileId}/comments",
		Arguments: []string{"fileId"}, HasParams: true, ReadOnly: true,
		Description: "Lists a file's comments",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Comments.List(ctx, a.value("fileId"), a.Params)
		},
	},
	{
		Name: "comments.update", Method: "PATCH", Path: "/files/{fileId}/comments/{commentId}",
		Arguments: []string{"fileId", "commentId"}, HasParams: true, HasBody: true,
		Description: "Updates a comment with patch semantics",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Comments.Update(ctx, a.value("fileId"), a.value("commentId"), a.Params, a.Body)
		},
	},

	// files
	{
		Name: "files.copy", Method: "POST", Path: "/files/{fileId}/copy",
		Arguments: []string{"fileId"}, HasParams: true, HasBody: true,
		Description: "Creates a copy of a file and applies any requested updates",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.Copy(ctx, a.value("fileId"), a.Params, a.Body)
		},
	},
	{
		Name: "files.create", Method: "POST", Path: "/files",
		HasParams: true, HasBody: true,
		Description: "Creates a new file from metadata",
		Note:        "the connector historically appended an undefined file ID to the path; creation is identifier-less",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.Create(ctx, a.Params, a.Body)
		},
	},
	{
		Name: "files.delete", Method: "DELETE", Path: "/files/{fileId}",
		Arguments: []string{"fileId"}, HasParams: true,
		Description: "Permanently deletes a file owned by the user without moving it to the trash",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.Delete(ctx, a.value("fileId"), a.Params)
		},
	},
	{
		Name: "files.downloadFile", Method: MethodCustom, Path: "/files/{fileId}?alt=media",
		Arguments: []string{"fileId"}, ReadOnly: true,
		Description: "Downloads the content of a file into the local file store",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.DownloadFile(ctx, a.value("fileId"))
		},
	},
	{
		Name: "files.downloadExportLink", Method: MethodCustom, Path: "exportLinks[{mimeType}]",
		Arguments: []string{"fileId", "mimeType"}, ReadOnly: true,
		Description: "Downloads one of a file's export links into the local file store",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.DownloadExportLink(ctx, a.value("fileId"), a.value("mimeType"))
		},
	},
	{
		Name: "files.emptyTrash", Method: "DELETE", Path: "/files/trash",
		Description: "Permanently deletes all of the user's trashed files",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.EmptyTrash(ctx)
		},
	},
	{
		Name: "files.export", Method: MethodCustom, Path: "/files/{fileId}/export",
		Arguments: []string{"fileId"}, HasParams: true, ReadOnly: true,
		Description: "Exports a Google Workspace document to the requested MIME type into the local file store",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.Export(ctx, a.value("fileId"), a.Params)
		},
	},
	{
		Name: "files.generateIds", Method: "GET", Path: "/files/generateIds",
		HasParams: true, ReadOnly: true,
		Description: "Generates a set of file IDs which can be provided in create or copy requests",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.GenerateIDs(ctx, a.Params)
		},
	},
	{
		Name: "files.get", Method: "GET", Path: "/files/{fileId}",
		Arguments: []string{"fileId"}, HasParams: true, ReadOnly: true,
		Description: "Gets a file's metadata by ID",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.Get(ctx, a.value("fileId"), a.Params)
		},
	},
	{
		Name: "files.list", Method: "GET", Path: "/files",
		HasParams: true, ReadOnly: true,
		Description: "Lists or searches files",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.List(ctx, a.Params)
		},
	},
	{
		Name: "files.update", Method: "PATCH", Path: "/files/{fileId}",
		Arguments: []string{"fileId"}, HasParams: true, HasBody: true,
		Description: "Updates a file's metadata",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.Update(ctx, a.value("fileId"), a.Params, a.Body)
		},
	},
	{
		Name: "files.uploadFile", Method: MethodCustom, Path: "/upload/drive/v3/files",
		Arguments:   []string{"fileId", "name", "mimeType", "folderId"},
		Description: "Uploads a file from the local file store to Drive, optionally into a folder",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.UploadFile(ctx, a.value("fileId"), a.value("name"), a.value("mimeType"), a.value("folderId"))
		},
	},
	{
		Name: "files.watch", Method: "PATCH", Path: "/files/{fileId}/watch",
		Arguments: []string{"fileId"}, HasParams: true, HasBody: true,
		Description: "Subscribes to changes to a file",
		Note:        "the Drive API documents POST for files.watch",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Files.Watch(ctx, a.value("fileId"), a.Params, a.Body)
		},
	},

	// permissions
	{
		Name: "permissions.create", Method: "POST", Path: "/files/{fileId}/permissions",
		Arguments: []string{"fileId"}, HasParams: true, HasBody: true,
		Description: "Creates a permission for a file or shared drive",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Permissions.Create(ctx, a.value("fileId"), a.Params, a.Body)
		},
	},
	{
		Name: "permissions.delete", Method: "DELETE", Path: "/files/{fileId}/permissions/{permissionId}",
		Arguments: []string{"fileId", "permissionId"}, HasParams: true,
		Description: "Deletes a permission",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Permissions.Delete(ctx, a.value("fileId"), a.value("permissionId"), a.Params)
		},
	},
	{
		Name: "permissions.get", Method: "GET", Path: "/files/{fileId}/permissions/{permissionId}",
		Arguments: []string{"fileId", "permissionId"}, HasParams: true, ReadOnly: true,
		Description: "Gets a permission by ID",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Permissions.Get(ctx, a.value("fileId"), a.value("permissionId"), a.Params)
		},
	},
	{
		Name: "permissions.list", Method: "GET", Path: "/files/{fileId}/permissions",
		Arguments: []string{"fileId"}, HasParams: true, ReadOnly: true,
		Description: "Lists a file's or shared drive's permissions",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Permissions.List(ctx, a.value("fileId"), a.Params)
		},
	},
	{
		Name: "permissions.update", Method: "PATCH", Path: "/files/{fileId}/permissions/{permissionId}",
		Arguments: []string{"fileId", "permissionId"}, HasParams: true, HasBody: true,
		Description: "Updates a permission with patch semantics",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Permissions.Update(ctx, a.value("fileId"), a.value("permissionId"), a.Params, a.Body)
		},
	},

	// replies
	{
		Name: "replies.create", Method: "POST", Path: "/files/{fileId}/comments/{commentId}/replies",
		Arguments: []string{"fileId", "commentId"}, HasParams: true, HasBody: true,
		Description: "Creates a reply to a comment",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Replies.Create(ctx, a.value("fileId"), a.value("commentId"), a.Params, a.Body)
		},
	},
	{
		Name: "replies.delete", Method: "DELETE", Path: "/files/{fileId}/comments/{commentId}/replies/{replyId}",
		Arguments: []string{"fileId", "commentId", "replyId"}, HasParams: true,
		Description: "Deletes a reply",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Replies.Delete(ctx, a.value("fileId"), a.value("commentId"), a.value("replyId"), a.Params)
		},
	},
	{
		Name: "replies.get", Method: "GET", Path: "/files/{fileId}/comments/{commentId}/replies/{replyId}",
		Arguments: []string{"fileId", "commentId", "replyId"}, HasParams: true, ReadOnly: true,
		Description: "Gets a reply by ID",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Replies.Get(ctx, a.value("fileId"), a.value("commentId"), a.value("replyId"), a.Params)
		},
	},
	{
		Name: "replies.list", Method: "GET", Path: "/files/{fileId}/comments/{commentId}/replies",
		Arguments: []string{"fileId", "commentId"}, HasParams: true, ReadOnly: true,
		Description: "Lists a comment's replies",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Replies.List(ctx, a.value("fileId"), a.value("commentId"), a.Params)
		},
	},
	{
		Name: "replies.update", Method: "PATCH", Path: "/files/{fileId}/comments/{commentId}/replies/{replyId}",
		Arguments: []string{"fileId", "commentId", "replyId"}, HasParams: true, HasBody: true,
		Description: "Updates a reply with patch semantics",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Replies.Update(ctx, a.value("fileId"), a.value("commentId"), a.value("replyId"), a.Params, a.Body)
		},
	},

	// revisions
	{
		Name: "revisions.delete", Method: "DELETE", Path: "/files/{fileId}/revisions/{revisionId}",
		Arguments: []string{"fileId", "revisionId"}, HasParams: true,
		Description: "Permanently deletes a file version",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Revisions.Delete(ctx, a.value("fileId"), a.value("revisionId"), a.Params)
		},
	},
	{
		Name: "revisions.get", Method: "GET", Path: "/files/{fileId}/revisions/{revisionId}",
		Arguments: []string{"fileId", "revisionId"}, HasParams: true, ReadOnly: true,
		Description: "Gets a revision's metadata by ID",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Revisions.Get(ctx, a.value("fileId"), a.value("revisionId"), a.Params)
		},
	},
	{
		Name: "revisions.list", Method: "GET", Path: "/files/{fileId}/revisions",
		Arguments: []string{"fileId"}, HasParams: true, ReadOnly: true,
		Description: "Lists a file's revisions",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Revisions.List(ctx, a.value("fileId"), a.Params)
		},
	},
	{
		Name: "revisions.update", Method: "PATCH", Path: "/files/{fileId}/revisions/{revisionId}",
		Arguments: []string{"fileId", "revisionId"}, HasParams: true, HasBody: true,
		Description: "Updates a revision with patch semantics",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Revisions.Update(ctx, a.value("fileId"), a.value("revisionId"), a.Params, a.Body)
		},
	},

	// drives
	{
		Name: "drives.create", Method: "POST", Path: "/drives",
		HasParams: true, HasBody: true,
		Description: "Creates a shared drive",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Drives.Create(ctx, a.Params, a.Body)
		},
	},
	{
		Name: "drives.delete", Method: "POST", Path: "/drives/{driveId}",
		Arguments:   []string{"driveId"},
		Description: "Deletes a shared drive",
		Note:        "the Drive API documents DELETE for drives.delete",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Drives.Delete(ctx, a.value("driveId"))
		},
	},
	{
		Name: "drives.get", Method: "GET", Path: "/drives/{driveId}",
		Arguments: []string{"driveId"}, HasParams: true, ReadOnly: true,
		Description: "Gets a shared drive's metadata by ID",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Drives.Get(ctx, a.value("driveId"), a.Params)
		},
	},
	{
		Name: "drives.hide", Method: "POST", Path: "/drives/{driveId}/hide",
		Arguments:   []string{"driveId"},
		Description: "Hides a shared drive from the default view",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Drives.Hide(ctx, a.value("driveId"))
		},
	},
	{
		Name: "drives.list", Method: "GET", Path: "/drives",
		HasParams: true, ReadOnly: true,
		Description: "Lists the user's shared drives",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Drives.List(ctx, a.Params)
		},
	},
	{
		Name: "drives.unhide", Method: "POST", Path: "/drives/{driveId}/unhide",
		Arguments:   []string{"driveId"},
		Description: "Restores a shared drive to the default view",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Drives.Unhide(ctx, a.value("driveId"))
		},
	},
	{
		Name: "drives.update", Method: "POST", Path: "/drives/{driveId}",
		Arguments: []string{"driveId"}, HasParams: true, HasBody: true,
		Description: "Updates the metadata for a shared drive",
		Note:        "the Drive API documents PATCH for drives.update",
		invoke: func(ctx context.Context, e *Endpoint, a Args) (Result, error) {
			return e.Drives.Update(ctx, a.value("driveId"), a.Params, a.Body)
		},
	},
}

var operationsByName = func() map[string]*Operation {
	m := make(map[string]*Operation, len(operations))
	for i := range operations {
		op := &operations[i]
		op.Resource, op.Action, _ = strings.Cut(op.Name, ".")
		m[op.Name] = op
	}
	return m
}()

// Operations returns the endpoint table sorted by name.
func Operations() []Operation {
	ops := make([]Operation, len(operations))
	for i, op := range operations {
		op.Arguments = slices.Clone(op.Arguments)
		ops[i] = op
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// Lookup returns the operation with the given name.
func Lookup(name string) (Operation, bool) {
	op, ok := operationsByName[name]
	if !ok {
		return Operation{}, false
	}
	out := *op
	out.Arguments = slices.Clone(op.Arguments)
	return out, true
}

// Call invokes the operation name with args.
func (e *Endpoint) Call(ctx context.Context, name string, args Args) (Result, error) {
	op, ok := operationsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	if err := op.bind(args); err != nil {
		return nil, err
	}
	return op.invoke(ctx, e, args)
}

func (op *Operation) bind(args Args) error {
	for name := range args.Values {
		if !op.accepts(name) {
			return fmt.Errorf("%w: %s does not take argument %q", ErrInvalidArguments, op.Name, name)
		}
	}
	if args.Params != nil && !op.HasParams {
		return fmt.Errorf("%w: %s does not take params", ErrInvalidArguments, op.Name)
	}
	if args.Body != nil && !op.HasBody {
		return fmt.Errorf("%w: %s does not take a body", ErrInvalidArguments, op.Name)
	}
	return nil
}

func (op *Operation) accepts(name string) bool {
	for _, a := range op.Arguments {
		if a == name {
			return true
		}
	}
	return false
}

// ExpandPath fills the path template with values. Missing values expand to
// the empty string.
func (op Operation) ExpandPath(values map[string]string) string {
	path := op.Path
	for _, name := range op.Arguments {
		path = strings.ReplaceAll(path, "{"+name+"}", values[name])
	}
	return path
}
