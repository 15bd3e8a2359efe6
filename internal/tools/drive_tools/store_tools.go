package drive_tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdrive-endpoint/internal/filestore"
	"github.com/teemow/gdrive-endpoint/internal/server"
	"github.com/teemow/gdrive-endpoint/internal/tools/batch"
	"github.com/teemow/gdrive-endpoint/internal/tools/common"
)

// maxReadSize caps the content returned inline by drive_store_read
const maxReadSize = 10 * 1024 * 1024

var errNoStore = errors.New("file store is not configured")

func storeOf(sc *server.ServerContext) (*filestore.Store, error) {
	if st := sc.Store(); st != nil {
		return st, nil
	}
	return nil, errNoStore
}

// storeContent is the drive_store_read result
type storeContent struct {
	*filestore.File
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// registerStoreTools registers the tools that move content in and out of
// the local file store. Downloads and exports land there; uploads read
// from it.
func registerStoreTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("drive_store_list",
		mcp.WithDescription("List the files held in the local file store"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("drive_store_list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			st, err := storeOf(sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			files, err := st.List()
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list stored files: %v", err)), nil
			}
			return common.JSONResult(map[string]any{"files": files}), nil
		}))

	readTool := mcp.NewTool("drive_store_read",
		mcp.WithDescription("Read a file from the local file store. Text content is returned as is, "+
			"anything else base64-encoded."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the stored file, as returned by the download and export tools"),
		),
		mcp.WithBoolean("base64",
			mcp.Description("Always return the content base64-encoded (default: false)"),
		),
	)
	s.AddTool(readTool, common.InstrumentedToolHandler("drive_store_read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			id := common.StringArg(args, "id")
			if id == "" {
				return mcp.NewToolResultError("id is required"), nil
			}
			forceBase64, _ := args["base64"].(bool)

			st, err := storeOf(sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			content, err := readStored(st, id, forceBase64)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to read stored file: %v", err)), nil
			}
			return common.JSONResult(content), nil
		}))

	if readOnly {
		return nil
	}

	putTool := mcp.NewTool("drive_store_put",
		mcp.WithDescription("Put content into the local file store, ready for drive_files_upload_file"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the file"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The file content (base64-encoded when isBase64 is true, plain text otherwise)"),
		),
		mcp.WithString("contentType",
			mcp.Description("The MIME type of the content (default: application/octet-stream)"),
		),
		mcp.WithBoolean("isBase64",
			mcp.Description("Whether the content is base64-encoded (default: false)"),
		),
	)
	s.AddTool(putTool, common.InstrumentedToolHandler("drive_store_put", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			name := common.StringArg(args, "name")
			if name == "" {
				return mcp.NewToolResultError("name is required"), nil
			}
			content, ok := args["content"].(string)
			if !ok {
				return mcp.NewToolResultError("content is required"), nil
			}
			contentType := common.StringArg(args, "contentType")
			if contentType == "" {
				contentType = "application/octet-stream"
			}

			var r io.Reader = strings.NewReader(content)
			if isBase64, _ := args["isBase64"].(bool); isBase64 {
				decoded, err := base64.StdEncoding.DecodeString(content)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to decode base64 content: %v", err)), nil
				}
				r = bytes.NewReader(decoded)
			}

			st, err := storeOf(sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			file, err := st.Put(ctx, name, contentType, r)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to store file: %v", err)), nil
			}
			return common.JSONResult(file), nil
		}))

	deleteTool := mcp.NewTool("drive_store_delete",
		mcp.WithDescription("Delete one or more files from the local file store"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Stored file ID (string) or array of IDs to delete"),
		),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandler("drive_store_delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ids, err := batch.ParseStringOrArray(request.GetArguments()["ids"], "ids")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			st, err := storeOf(sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			results := batch.ProcessBatch(ids, func(id string) (any, error) {
				if err := st.Delete(id); err != nil {
					return nil, err
				}
				return "deleted", nil
			})
			return mcp.NewToolResultText(batch.FormatResults(results)), nil
		}))

	return nil
}

// readStored returns a stored file's content, inline as text when it is
// valid UTF-8 with a text content type
func readStored(st *filestore.Store, id string, forceBase64 bool) (*storeContent, error) {
	rc, file, err := st.Open(id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if file.Size > maxReadSize {
		return nil, fmt.Errorf("%s is %d bytes, more than the %d bytes that can be read inline", id, file.Size, maxReadSize)
	}
	data, err := io.ReadAll(io.LimitReader(rc, maxReadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", id, err)
	}

	out := &storeContent{File: file}
	if !forceBase64 && isText(file.ContentType) && utf8.Valid(data) {
		out.Encoding = "text"
		out.Content = string(data)
		return out, nil
	}
	out.Encoding = "base64"
	out.Content = base64.StdEncoding.EncodeToString(data)
	return out, nil
}

func isText(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.TrimSpace(ct)
	switch {
	case strings.HasPrefix(ct, "text/"):
		return true
	case ct == "application/json", ct == "application/xml", strings.HasSuffix(ct, "+json"), strings.HasSuffix(ct, "+xml"):
		return true
	}
	return false
}
