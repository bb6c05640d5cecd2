// Package gcsfs provides the fileio.FileSystem serving gs:// locations
// through the Google Cloud Storage client.
package gcsfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/internal/rangeio"
)

// FS serves gs locations. Paths arrive with the bucket folded in
// ("bucket/object/parts").
type FS struct {
	client      *storage.Client
	userProject string
}

// New builds a GCS client from the configuration bag. With a
// gcs.oauth2.token the client authenticates with that bearer token;
// otherwise application-default credentials apply.
func New(ctx context.Context, properties fileio.Properties) (*FS, error) {
	var opts []option.ClientOption
	if endpoint := properties.Get(fileio.GCSEndpoint, ""); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if token := properties.Get(fileio.GCSToken, ""); token != "" {
		tok := &oauth2.Token{AccessToken: token}
		if at := properties.Get(fileio.GCSTokenExpiresAt, ""); at != "" {
			ms, err := strconv.ParseInt(at, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("gcsfs: invalid %s: %w", fileio.GCSTokenExpiresAt, err)
			}
			tok.Expiry = time.UnixMilli(ms)
		}
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	fs := &FS{client: client}
	if properties.GetBool(fileio.GCSRequesterPays, false) {
		fs.userProject = properties.Get(fileio.GCSProjectID, "")
	}
	return fs, nil
}

func (fs *FS) object(path string) (*storage.ObjectHandle, error) {
	bucket, key, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("gcsfs: location %q does not name a bucket and object", path)
	}
	b := fs.client.Bucket(bucket)
	if fs.userProject != "" {
		b = b.UserProject(fs.userProject)
	}
	return b.Object(key), nil
}

// Open returns a seekable stream over the object, read through range
// readers reopened at the target offset after a seek.
func (fs *FS) Open(ctx context.Context, path string) (fileio.InputStream, error) {
	obj, err := fs.object(path)
	if err != nil {
		return nil, err
	}
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, translate(path, err)
	}
	return rangeio.NewReader(attrs.Size, func(offset int64) (io.ReadCloser, error) {
		r, err := obj.NewRangeReader(ctx, offset, -1)
		if err != nil {
			return nil, translate(path, err)
		}
		return r, nil
	}), nil
}

// OpenSequential streams the object with a single reader.
func (fs *FS) OpenSequential(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := fs.object(path)
	if err != nil {
		return nil, err
	}
	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, translate(path, err)
	}
	return r, nil
}

// Create returns a stream writing the object. Without overwrite the
// write carries a does-not-exist precondition, so the existence check
// is atomic on the server and surfaces on Close.
func (fs *FS) Create(ctx context.Context, path string, overwrite bool) (fileio.OutputStream, error) {
	obj, err := fs.object(path)
	if err != nil {
		return nil, err
	}
	if !overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	return &writer{w: obj.NewWriter(ctx), path: path}, nil
}

// Stat returns the object size.
func (fs *FS) Stat(ctx context.Context, path string) (int64, error) {
	obj, err := fs.object(path)
	if err != nil {
		return 0, err
	}
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return 0, translate(path, err)
	}
	return attrs.Size, nil
}

// Remove deletes the object.
func (fs *FS) Remove(ctx context.Context, path string) error {
	obj, err := fs.object(path)
	if err != nil {
		return err
	}
	return translate(path, obj.Delete(ctx))
}

// writer translates the precondition and permission failures GCS only
// reports when the upload is finalized on Close.
type writer struct {
	w    *storage.Writer
	path string
}

func (w *writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	return n, translate(w.path, err)
}

func (w *writer) Close() error {
	return translate(w.path, w.w.Close())
}

func translate(path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fileio.PathNotFoundError{Path: path}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fileio.PathNotFoundError{Path: path}
		case http.StatusPreconditionFailed:
			return fileio.PathAlreadyExistsError{Path: path}
		case http.StatusForbidden, http.StatusUnauthorized:
			return fileio.PermissionError{Path: path, Detail: err}
		}
	}
	return err
}
