package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxFileSize caps a single stored file (512MB)
	MaxFileSize = 512 * 1024 * 1024

	metaSuffix = ".json"
	dataSuffix = ".bin"
)

var (
	// ErrNotFound is returned for ids the store does not hold
	ErrNotFound = errors.New("file not found in store")

	// ErrTooLarge is returned when content exceeds MaxFileSize
	ErrTooLarge = errors.New("file exceeds maximum size")
)

// File is the metadata of a stored file
type File struct {
	// ID is the store identifier, unrelated to Drive file IDs
	ID string `json:"id"`

	// Name is the original file name
	Name string `json:"name"`

	// ContentType is the MIME type of the content
	ContentType string `json:"contentType"`

	// Size is the content length in bytes
	Size int64 `json:"size"`

	// CreatedAt is when the file was stored
	CreatedAt time.Time `json:"createdAt"`
}

// Store keeps binary payloads in a local directory. Each file is a data file
// plus a JSON metadata sidecar, both named after the file id.
type Store struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// New opens (and creates if needed) a store rooted at dir
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create file store directory: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the root directory of the store
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) dataPath(id string) string {
	return filepath.Join(s.dir, id+dataSuffix)
}

func (s *Store) metaPath(id string) string {
	return filepath.Join(s.dir, id+metaSuffix)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Put stores the content read from r under a new id
func (s *Store) Put(ctx context.Context, name, contentType string, r io.Reader) (*File, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if r == nil {
		return nil, fmt.Errorf("file content is required")
	}

	id := uuid.NewString()
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(&contextReader{ctx: ctx, r: r}, MaxFileSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write file content: %w", err)
	}
	if n > MaxFileSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, name)
	}

	f := &File{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        n,
		CreatedAt:   s.now().UTC(),
	}
	meta, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode file metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(tmp.Name(), s.dataPath(id)); err != nil {
		return nil, fmt.Errorf("failed to store file content: %w", err)
	}
	if err := os.WriteFile(s.metaPath(id), meta, 0600); err != nil {
		os.Remove(s.dataPath(id))
		return nil, fmt.Errorf("failed to store file metadata: %w", err)
	}
	return f, nil
}

// Stat returns the metadata of a stored file
func (s *Store) Stat(id string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stat(id)
}

func (s *Store) stat(id string) (*File, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read file metadata: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode file metadata: %w", err)
	}
	return &f, nil
}

// Open returns the content and metadata of a stored file. The caller closes
// the reader.
func (s *Store) Open(id string) (io.ReadCloser, *File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.stat(id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := os.Open(s.dataPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, nil, fmt.Errorf("failed to open file content: %w", err)
	}
	return rc, f, nil
}

// Delete removes a stored file
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.stat(id); err != nil {
		return err
	}
	if err := os.Remove(s.dataPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file content: %w", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file metadata: %w", err)
	}
	return nil
}

// List returns all stored files, newest first
func (s *Store) List() ([]*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list file store: %w", err)
	}

	files := make([]*File, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		f, err := s.stat(strings.TrimSuffix(name, metaSuffix))
		if err != nil {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].ID < files[j].ID
		}
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// contextReader stops reading once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
