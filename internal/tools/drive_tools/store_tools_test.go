package drive_tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gdrive-endpoint/internal/filestore"
	"github.com/teemow/gdrive-endpoint/internal/tools/batch"
)

func TestStorePutAndRead(t *testing.T) {
	f := newFixture(t, false)

	result := f.call(t, "drive_store_put", map[string]any{
		"name":        "notes.txt",
		"content":     "hello drive",
		"contentType": "text/plain",
	})
	require.False(t, result.IsError, text(t, result))

	var stored filestore.File
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &stored))
	assert.Equal(t, "notes.txt", stored.Name)
	assert.EqualValues(t, len("hello drive"), stored.Size)

	result = f.call(t, "drive_store_read", map[string]any{"id": stored.ID})
	require.False(t, result.IsError, text(t, result))

	var content map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &content))
	assert.Equal(t, "text", content["encoding"])
	assert.Equal(t, "hello drive", content["content"])
	assert.Equal(t, "notes.txt", content["name"])
}

func TestStorePut_Base64(t *testing.T) {
	f := newFixture(t, false)
	payload := []byte{0x00, 0xff, 0x10, 0x80}

	result := f.call(t, "drive_store_put", map[string]any{
		"name":     "blob.bin",
		"content":  base64.StdEncoding.EncodeToString(payload),
		"isBase64": true,
	})
	require.False(t, result.IsError, text(t, result))

	var stored filestore.File
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &stored))
	assert.Equal(t, "application/octet-stream", stored.ContentType)

	content, err := readStored(f.store, stored.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "base64", content.Encoding)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), content.Content)
}

func TestStorePut_InvalidBase64(t *testing.T) {
	f := newFixture(t, false)

	result := f.call(t, "drive_store_put", map[string]any{
		"name":     "blob.bin",
		"content":  "not base64!",
		"isBase64": true,
	})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "Failed to decode base64 content")
}

func TestStoreRead_ForceBase64(t *testing.T) {
	f := newFixture(t, false)
	stored, err := f.store.Put(context.Background(), "a.json", "application/json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)

	content, err := readStored(f.store, stored.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "base64", content.Encoding)
}

func TestStoreRead_Unknown(t *testing.T) {
	f := newFixture(t, true)

	result := f.call(t, "drive_store_read", map[string]any{"id": "missing"})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "Failed to read stored file")
}

func TestStoreListAndDelete(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	a, err := f.store.Put(ctx, "a.txt", "text/plain", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := f.store.Put(ctx, "b.txt", "text/plain", strings.NewReader("b"))
	require.NoError(t, err)

	result := f.call(t, "drive_store_list", nil)
	require.False(t, result.IsError, text(t, result))
	var listed struct {
		Files []filestore.File `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &listed))
	assert.Len(t, listed.Files, 2)

	result = f.call(t, "drive_store_delete", map[string]any{"ids": []any{a.ID, b.ID, "missing"}})
	require.False(t, result.IsError, text(t, result))
	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &br))
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 1, br.Failed)

	files, err := f.store.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIsText(t *testing.T) {
	tests := map[string]bool{
		"text/plain":                    true,
		"text/csv; charset=utf-8":       true,
		"application/json":              true,
		"application/vnd.api+json":      true,
		"image/svg+xml":                 true,
		"application/pdf":               false,
		"application/octet-stream":      false,
		"":                              false,
	}
	for ct, want := range tests {
		assert.Equal(t, want, isText(ct), ct)
	}
}
