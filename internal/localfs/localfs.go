// Package localfs provides the fileio.FileSystem serving local-disk
// locations.
package localfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/tableform/tableio/fileio"
)

// FS serves file:// locations from the local filesystem.
type FS struct{}

// New returns a local-disk filesystem client.
func New() *FS {
	return &FS{}
}

// Open returns the opened file; *os.File satisfies InputStream as-is.
func (fs *FS) Open(ctx context.Context, path string) (fileio.InputStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, translate(path, err)
	}
	return f, nil
}

// Create opens path for writing. Without overwrite the create is
// exclusive, so racing creators cannot both win. Parent directories
// are created as needed, since callers address files by location and
// never manage directories themselves.
func (fs *FS) Create(ctx context.Context, path string, overwrite bool) (fileio.OutputStream, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, translate(path, err)
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, translate(path, err)
	}
	return f, nil
}

// Stat returns the file size.
func (fs *FS) Stat(ctx context.Context, path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, translate(path, err)
	}
	return fi.Size(), nil
}

// Remove deletes the file.
func (fs *FS) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return translate(path, err)
	}
	return nil
}

func translate(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fileio.PathNotFoundError{Path: path}
	case errors.Is(err, os.ErrExist):
		return fileio.PathAlreadyExistsError{Path: path}
	case errors.Is(err, os.ErrPermission):
		return fileio.PermissionError{Path: path, Detail: err}
	default:
		return err
	}
}
