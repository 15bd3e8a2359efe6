package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/filestore"
	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
)

// DownloadFile stores the content of a Drive file in the file store. The
// stored name is the Drive name with "/" replaced by "-".
func (c *Client) DownloadFile(ctx context.Context, req endpoint.DownloadRequest) (endpoint.Result, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	if req.FileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	var stored *filestore.File
	err := c.observe(ctx, instrumentation.TransferDownload, "files", func(ctx context.Context) (int, error) {
		meta, err := c.fileMetadata(ctx, req.FileID, "id, name, mimeType")
		if err != nil {
			return statusOf(err), err
		}

		resp, err := c.service.Files.Get(req.FileID).
			Context(ctx).
			SupportsAllDrives(true).
			Download()
		if err != nil {
			return statusOf(err), c.classify(fmt.Errorf("failed to download file: %w", err))
		}
		defer resp.Body.Close()

		stored, err = c.store.Put(ctx, storedName(meta.Name), meta.MimeType, resp.Body)
		return resp.StatusCode, err
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", req.FileID, err)
	}
	return storedResult(stored), nil
}

// ExportFile exports a Google Workspace document through req.Path and stores
// the result. The stored name gets the extension of the requested mimeType.
func (c *Client) ExportFile(ctx context.Context, req endpoint.ExportRequest) (endpoint.Result, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	if req.FileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	mimeType, _ := req.Params["mimeType"].(string)

	var stored *filestore.File
	err := c.observe(ctx, instrumentation.TransferExport, "files", func(ctx context.Context) (int, error) {
		meta, err := c.fileMetadata(ctx, req.FileID, "id, name")
		if err != nil {
			return statusOf(err), err
		}

		u, err := c.buildURL(req.Path, req.Params)
		if err != nil {
			return 0, err
		}
		resp, err := c.fetch(ctx, u)
		if err != nil {
			return statusOf(err), err
		}
		defer resp.Body.Close()

		stored, err = c.store.Put(ctx, withExtension(storedName(meta.Name), mimeType), mimeType, resp.Body)
		return resp.StatusCode, err
	})
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", req.FileID, err)
	}
	return storedResult(stored), nil
}

// DownloadExportLink stores the export of a file read from its exportLinks.
// An empty mime type selects PDF.
func (c *Client) DownloadExportLink(ctx context.Context, req endpoint.ExportLinkRequest) (endpoint.Result, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	if req.FileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = MimeTypePDF
	}

	var stored *filestore.File
	err := c.observe(ctx, instrumentation.TransferExportLink, "files", func(ctx context.Context) (int, error) {
		meta, err := c.fileMetadata(ctx, req.FileID, "id, name, exportLinks")
		if err != nil {
			return statusOf(err), err
		}

		link, ok := meta.ExportLinks[mimeType]
		if !ok {
			return 0, fmt.Errorf("file %s has no export link for %s", req.FileID, mimeType)
		}
		resp, err := c.fetch(ctx, link)
		if err != nil {
			return statusOf(err), err
		}
		defer resp.Body.Close()

		stored, err = c.store.Put(ctx, withExtension(storedName(meta.Name), mimeType), mimeType, resp.Body)
		return resp.StatusCode, err
	})
	if err != nil {
		return nil, fmt.Errorf("export link %s: %w", req.FileID, err)
	}
	return storedResult(stored), nil
}

// UploadFile creates a Drive file from a stored file and returns the new
// Drive file ID as fileId.
func (c *Client) UploadFile(ctx context.Context, req endpoint.UploadRequest) (endpoint.Result, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}

	rc, stored, err := c.store.Open(req.FileID)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", req.FileID, err)
	}
	defer rc.Close()

	name := req.Name
	if name == "" {
		name = stored.Name
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = stored.ContentType
	}

	file := &drive.File{Name: name}
	if req.FolderID != "" {
		file.Parents = []string{req.FolderID}
	}

	var created *drive.File
	err = c.observe(ctx, instrumentation.TransferUpload, "files", func(ctx context.Context) (int, error) {
		var err error
		created, err = c.service.Files.Create(file).
			Context(ctx).
			Media(rc, googleapi.ContentType(mimeType)).
			SupportsAllDrives(true).
			Fields("id, parents").
			Do()
		if err != nil {
			return statusOf(err), c.classify(fmt.Errorf("failed to upload file: %w", err))
		}
		return created.HTTPStatusCode, nil
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", req.FileID, err)
	}

	result := endpoint.Result{"fileId": created.Id}
	if len(created.Parents) > 0 {
		result["parents"] = created.Parents
	}
	return result, nil
}

func (c *Client) fileMetadata(ctx context.Context, fileID, fields string) (*drive.File, error) {
	f, err := c.service.Files.Get(fileID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(googleapi.Field(fields)).
		Do()
	if err != nil {
		return nil, c.classify(fmt.Errorf("failed to get file metadata: %w", err))
	}
	return f, nil
}

// fetch GETs an absolute URL with the authorized client
func (c *Client) fetch(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.checkTransportError(err)
	}
	if err := googleapi.CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, c.classify(err)
	}
	return resp, nil
}

func storedName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	if name == "" {
		return "untitled"
	}
	return name
}

func storedResult(f *filestore.File) endpoint.Result {
	return endpoint.Result{
		"fileId":      f.ID,
		"name":        f.Name,
		"contentType": f.ContentType,
		"size":        f.Size,
	}
}

func statusOf(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
