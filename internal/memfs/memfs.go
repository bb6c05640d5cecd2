// Package memfs provides an in-memory fileio.FileSystem. It backs the
// contract-level tests and is handy as an ephemeral store in tooling;
// contents are lost when the process exits.
package memfs

import (
	"bytes"
	"context"
	"sync"

	"github.com/tableform/tableio/fileio"
)

// FS is an in-memory fileio.FileSystem, safe for concurrent use.
type FS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// New returns an empty in-memory filesystem.
func New() *FS {
	return &FS{files: make(map[string][]byte)}
}

// Open returns a seekable stream over the file at path.
func (fs *FS) Open(ctx context.Context, path string) (fileio.InputStream, error) {
	fs.mu.RLock()
	data, ok := fs.files[path]
	fs.mu.RUnlock()
	if !ok {
		return nil, fileio.PathNotFoundError{Path: path}
	}
	return &reader{Reader: bytes.NewReader(data)}, nil
}

// Create returns a stream writing to path. The file only becomes
// visible once the stream is closed.
func (fs *FS) Create(ctx context.Context, path string, overwrite bool) (fileio.OutputStream, error) {
	if !overwrite {
		fs.mu.RLock()
		_, exists := fs.files[path]
		fs.mu.RUnlock()
		if exists {
			return nil, fileio.PathAlreadyExistsError{Path: path}
		}
	}
	return &writer{fs: fs, path: path, overwrite: overwrite}, nil
}

// Stat returns the size of the file at path.
func (fs *FS) Stat(ctx context.Context, path string) (int64, error) {
	fs.mu.RLock()
	data, ok := fs.files[path]
	fs.mu.RUnlock()
	if !ok {
		return 0, fileio.PathNotFoundError{Path: path}
	}
	return int64(len(data)), nil
}

// Remove deletes the file at path.
func (fs *FS) Remove(ctx context.Context, path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[path]; !ok {
		return fileio.PathNotFoundError{Path: path}
	}
	delete(fs.files, path)
	return nil
}

type reader struct {
	*bytes.Reader
}

func (r *reader) Close() error {
	return nil
}

// writer buffers writes and commits the file on Close. Committing on
// close keeps partially written files invisible, mirroring how the
// object-store clients behave.
type writer struct {
	fs        *FS
	path      string
	overwrite bool
	buf       bytes.Buffer
	closed    bool
}

func (w *writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	if !w.overwrite {
		// The location may have been created since the stream was
		// acquired; keep create-without-overwrite atomic at commit time.
		if _, exists := w.fs.files[w.path]; exists {
			return fileio.PathAlreadyExistsError{Path: w.path}
		}
	}
	w.fs.files[w.path] = append([]byte(nil), w.buf.Bytes()...)
	return nil
}
