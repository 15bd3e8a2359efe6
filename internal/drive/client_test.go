package drive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/filestore"
)

type capturedRequest struct {
	Method      string
	Path        string
	Query       map[string][]string
	Body        string
	ContentType string
}

// fakeDrive is an httptest server that records requests and answers with a
// handler chosen per test
type fakeDrive struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
	handler  http.HandlerFunc
}

func newFakeDrive(t *testing.T, handler http.HandlerFunc) *fakeDrive {
	t.Helper()
	fd := &fakeDrive{handler: handler}
	fd.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fd.mu.Lock()
		fd.requests = append(fd.requests, capturedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.Query(),
			Body:        string(body),
			ContentType: r.Header.Get("Content-Type"),
		})
		fd.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		fd.handler(w, r)
	}))
	t.Cleanup(fd.Close)
	return fd
}

func (fd *fakeDrive) last() capturedRequest {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.requests[len(fd.requests)-1]
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(t *testing.T, fd *fakeDrive, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = fd.URL + "/drive/v3"
	if cfg.Account == "" {
		cfg.Account = "work"
	}
	c, err := New(context.Background(), fd.Client(), cfg)
	require.NoError(t, err)
	return c
}

func newTestStore(t *testing.T) *filestore.Store {
	t.Helper()
	s, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestGetRequest(t *testing.T) {
	fd := newFakeDrive(t, jsonHandler(http.StatusOK, `{"id":"abc","name":"notes.txt","size":"12"}`))
	c := newTestClient(t, fd, Config{})

	res, err := c.GetRequest(context.Background(), endpoint.Descriptor{
		Path:   "/files/abc",
		Params: endpoint.Params{"fields": "id,name", "supportsAllDrives": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", res["id"])
	assert.Equal(t, "notes.txt", res["name"])

	req := fd.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/drive/v3/files/abc", req.Path)
	assert.Equal(t, []string{"id,name"}, req.Query["fields"])
	assert.Equal(t, []string{"true"}, req.Query["supportsAllDrives"])
	assert.Empty(t, req.Body)
}

func TestRequestContent(t *testing.T) {
	tests := []struct {
		name     string
		send     func(c *Client) (endpoint.Result, error)
		method   string
		wantBody string
	}{
		{
			name: "POST without body or params sends an empty object",
			send: func(c *Client) (endpoint.Result, error) {
				return c.PostRequest(context.Background(), endpoint.Descriptor{Path: "/drives/d1/hide"})
			},
			method:   http.MethodPost,
			wantBody: `{}`,
		},
		{
			name: "POST with params only sends the params",
			send: func(c *Client) (endpoint.Result, error) {
				return c.PostRequest(context.Background(), endpoint.Descriptor{
					Path:   "/changes/watch",
					Params: endpoint.Params{"pageToken": "7"},
				})
			},
			method:   http.MethodPost,
			wantBody: `{"pageToken":"7"}`,
		},
		{
			name: "PATCH sends the body",
			send: func(c *Client) (endpoint.Result, error) {
				return c.PatchRequest(context.Background(), endpoint.Descriptor{
					Path:   "/files/f1",
					Params: endpoint.Params{"fields": "id"},
					Body:   map[string]any{"name": "renamed"},
				})
			},
			method:   http.MethodPatch,
			wantBody: `{"name":"renamed"}`,
		},
		{
			name: "PUT sends the body",
			send: func(c *Client) (endpoint.Result, error) {
				return c.PutRequest(context.Background(), endpoint.Descriptor{Path: "files/f1", Body: []any{1, 2}})
			},
			method:   http.MethodPut,
			wantBody: `[1,2]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := newFakeDrive(t, jsonHandler(http.StatusOK, `{}`))
			c := newTestClient(t, fd, Config{})

			_, err := tt.send(c)
			require.NoError(t, err)

			req := fd.last()
			assert.Equal(t, tt.method, req.Method)
			assert.JSONEq(t, tt.wantBody, req.Body)
			assert.Equal(t, "application/json", req.ContentType)
		})
	}
}

func TestDeleteRequestNoContent(t *testing.T) {
	fd := newFakeDrive(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, fd, Config{})

	res, err := c.DeleteRequest(context.Background(), endpoint.Descriptor{Path: "/files/trash", Body: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, endpoint.Result{}, res)

	req := fd.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/drive/v3/files/trash", req.Path)
	assert.Empty(t, req.Body)
}

func TestArrayParams(t *testing.T) {
	fd := newFakeDrive(t, jsonHandler(http.StatusOK, `{"ids":["a","b"]}`))
	c := newTestClient(t, fd, Config{})

	res, err := c.GetRequest(context.Background(), endpoint.Descriptor{
		Path:   "/files/generateIds",
		Params: endpoint.Params{"space": []any{"drive", "appDataFolder"}, "count": float64(2), "skip": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, res["ids"])

	req := fd.last()
	assert.Equal(t, []string{"drive", "appDataFolder"}, req.Query["space"])
	assert.Equal(t, []string{"2"}, req.Query["count"])
	assert.NotContains(t, req.Query, "skip")
}

func TestNonObjectResponse(t *testing.T) {
	fd := newFakeDrive(t, jsonHandler(http.StatusOK, `["x"]`))
	c := newTestClient(t, fd, Config{})

	res, err := c.GetRequest(context.Background(), endpoint.Descriptor{Path: "/files"})
	require.NoError(t, err)
	assert.Equal(t, endpoint.Result{"value": []any{"x"}}, res)
}

func TestBuildURL(t *testing.T) {
	c := &Client{baseURL: DefaultBaseURL}

	tests := []struct {
		name   string
		path   string
		params endpoint.Params
		want   string
	}{
		{"leading slash", "/files/abc", nil, DefaultBaseURL + "/files/abc"},
		{"relative path", "files/abc", nil, DefaultBaseURL + "/files/abc"},
		{"empty path", "", nil, DefaultBaseURL},
		{"absolute https url", "https://docs.google.com/feeds/download?id=1", nil, "https://docs.google.com/feeds/download?id=1"},
		{"params are encoded", "/files", endpoint.Params{"q": "name = 'a b'"}, DefaultBaseURL + "/files?q=name+%3D+%27a+b%27"},
		{"params merge with existing query", "https://example.com/x?a=1", endpoint.Params{"b": true}, "https://example.com/x?a=1&b=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.buildURL(tt.path, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorClassification(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		fd := newFakeDrive(t, jsonHandler(http.StatusNotFound,
			`{"error":{"code":404,"message":"File not found: x.","errors":[{"reason":"notFound","message":"File not found: x."}]}}`))
		c := newTestClient(t, fd, Config{})

		_, err := c.GetRequest(context.Background(), endpoint.Descriptor{Path: "/files/x"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		var apiErr *googleapi.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.Code)
	})

	t.Run("unauthorized fires the hook", func(t *testing.T) {
		fd := newFakeDrive(t, jsonHandler(http.StatusUnauthorized,
			`{"error":{"code":401,"message":"Invalid Credentials","errors":[{"reason":"authError"}]}}`))

		var rejected []string
		c := newTestClient(t, fd, Config{OnUnauthorized: func(account string) {
			rejected = append(rejected, account)
		}})

		_, err := c.PostRequest(context.Background(), endpoint.Descriptor{Path: "/files"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnauthorized))
		assert.Equal(t, []string{"work"}, rejected)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		fd := newFakeDrive(t, jsonHandler(http.StatusForbidden,
			`{"error":{"code":403,"message":"The user does not have sufficient permissions for this file."}}`))
		c := newTestClient(t, fd, Config{})

		_, err := c.DeleteRequest(context.Background(), endpoint.Descriptor{Path: "/files/x"})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnauthorized))
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "sufficient permissions")
	})
}

func TestDownloadFile(t *testing.T) {
	fd := newFakeDrive(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") == "media" {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "hello drive")
			return
		}
		jsonHandler(http.StatusOK, `{"id":"f1","name":"reports/q1.txt","mimeType":"text/plain"}`)(w, r)
	})
	store := newTestStore(t)
	c := newTestClient(t, fd, Config{Store: store})

	res, err := c.DownloadFile(context.Background(), endpoint.DownloadRequest{FileID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, "reports-q1.txt", res["name"])
	assert.Equal(t, "text/plain", res["contentType"])
	assert.Equal(t, int64(11), res["size"])

	rc, meta, err := store.Open(res["fileId"].(string))
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello drive", string(data))
	assert.Equal(t, "reports-q1.txt", meta.Name)
}

func TestExportFile(t *testing.T) {
	fd := newFakeDrive(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/export") {
			w.Header().Set("Content-Type", MimeTypePDF)
			_, _ = io.WriteString(w, "%PDF")
			return
		}
		jsonHandler(http.StatusOK, `{"id":"doc1","name":"Plan/2026"}`)(w, r)
	})
	store := newTestStore(t)
	c := newTestClient(t, fd, Config{Store: store})

	res, err := c.ExportFile(context.Background(), endpoint.ExportRequest{
		FileID: "doc1",
		Path:   "/files/doc1/export",
		Params: endpoint.Params{"mimeType": MimeTypePDF},
	})
	require.NoError(t, err)
	assert.Equal(t, "Plan-2026.pdf", res["name"])
	assert.Equal(t, MimeTypePDF, res["contentType"])

	req := fd.last()
	assert.Equal(t, "/drive/v3/files/doc1/export", req.Path)
	assert.Equal(t, []string{MimeTypePDF}, req.Query["mimeType"])
}

func TestDownloadExportLink(t *testing.T) {
	var fd *fakeDrive
	fd = newFakeDrive(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/export/csv" {
			_, _ = io.WriteString(w, "a,b\n1,2\n")
			return
		}
		meta := map[string]any{
			"id":   "sheet1",
			"name": "Budget",
			"exportLinks": map[string]string{
				"text/csv":  fd.URL + "/export/csv",
				MimeTypePDF: fd.URL + "/export/pdf",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(meta)
	})
	store := newTestStore(t)
	c := newTestClient(t, fd, Config{Store: store})

	res, err := c.DownloadExportLink(context.Background(), endpoint.ExportLinkRequest{FileID: "sheet1", MimeType: "text/csv"})
	require.NoError(t, err)
	assert.Equal(t, "Budget.csv", res["name"])
	assert.Equal(t, int64(8), res["size"])

	_, err = c.DownloadExportLink(context.Background(), endpoint.ExportLinkRequest{FileID: "sheet1", MimeType: "image/png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no export link")
}

func TestUploadFile(t *testing.T) {
	fd := newFakeDrive(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Query().Get("uploadType") != "" {
			jsonHandler(http.StatusOK, `{"id":"new1","parents":["folder-1"]}`)(w, r)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})
	store := newTestStore(t)
	c := newTestClient(t, fd, Config{Store: store})

	stored, err := store.Put(context.Background(), "local.txt", "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)

	res, err := c.UploadFile(context.Background(), endpoint.UploadRequest{
		FileID:   stored.ID,
		Name:     "remote.txt",
		MimeType: "text/plain",
		FolderID: "folder-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "new1", res["fileId"])
	assert.Equal(t, []string{"folder-1"}, res["parents"])

	req := fd.last()
	assert.Contains(t, req.Body, "remote.txt")
	assert.Contains(t, req.Body, "folder-1")
	assert.Contains(t, req.Body, "payload")
}

func TestTransfersRequireStore(t *testing.T) {
	fd := newFakeDrive(t, jsonHandler(http.StatusOK, `{}`))
	c := newTestClient(t, fd, Config{})

	_, err := c.DownloadFile(context.Background(), endpoint.DownloadRequest{FileID: "f1"})
	assert.ErrorIs(t, err, ErrNoStore)

	_, err = c.UploadFile(context.Background(), endpoint.UploadRequest{FileID: "x"})
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestUploadUnknownStoredFile(t *testing.T) {
	fd := newFakeDrive(t, jsonHandler(http.StatusOK, `{}`))
	c := newTestClient(t, fd, Config{Store: newTestStore(t)})

	_, err := c.UploadFile(context.Background(), endpoint.UploadRequest{FileID: "missing"})
	assert.ErrorIs(t, err, filestore.ErrNotFound)
}

func TestWithExtension(t *testing.T) {
	tests := []struct {
		name, mimeType, want string
	}{
		{"Report", MimeTypePDF, "Report.pdf"},
		{"Report.PDF", MimeTypePDF, "Report.PDF"},
		{"Sheet", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "Sheet.xlsx"},
		{"Notes", "text/plain; charset=utf-8", "Notes.txt"},
		{"Blob", "application/x-unknown", "Blob"},
		{"Blob", "", "Blob"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withExtension(tt.name, tt.mimeType))
	}
}

func TestNewDefaults(t *testing.T) {
	c, err := New(context.Background(), http.DefaultClient, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, "default", c.Account())

	_, err = New(context.Background(), nil, Config{})
	assert.Error(t, err)
}
