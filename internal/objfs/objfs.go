// Package objfs provides the fileio.FileSystem the cloud backend uses
// for s3-family locations, built on the MinIO client so that any
// S3-compatible store works with nothing but an endpoint change.
package objfs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tableform/tableio/fileio"
)

const defaultEndpoint = "s3.amazonaws.com"

// FS serves s3-family locations through an S3-compatible endpoint.
// Paths arrive with the bucket folded in ("bucket/key/parts").
type FS struct {
	client *minio.Client
}

// New builds a client from the configuration bag. Construction performs
// no network calls.
func New(properties fileio.Properties) (*FS, error) {
	endpoint := properties.Get(fileio.S3Endpoint, defaultEndpoint)
	secure := true
	if scheme, rest, ok := strings.Cut(endpoint, "://"); ok {
		secure = scheme != "http"
		endpoint = rest
	}

	options := &minio.Options{
		Secure: secure,
		Region: properties.Get(fileio.S3Region, properties.Get(fileio.ClientRegion, "")),
	}
	accessKey := properties.Get(fileio.S3AccessKeyID, properties.Get(fileio.ClientAccessKeyID, ""))
	secretKey := properties.Get(fileio.S3SecretAccessKey, properties.Get(fileio.ClientSecretAccessKey, ""))
	if accessKey != "" && secretKey != "" {
		token := properties.Get(fileio.S3SessionToken, properties.Get(fileio.ClientSessionToken, ""))
		options.Creds = credentials.NewStaticV4(accessKey, secretKey, token)
	} else {
		options.Creds = credentials.NewIAM("")
	}

	client, err := minio.New(endpoint, options)
	if err != nil {
		return nil, err
	}
	return &FS{client: client}, nil
}

// Open returns a stream over the object; *minio.Object is seekable
// as-is.
func (fs *FS) Open(ctx context.Context, path string) (fileio.InputStream, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat both verifies existence and primes the
	// object's size for seeks relative to the end.
	if _, err := fs.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return nil, translate(path, err)
	}
	obj, err := fs.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(path, err)
	}
	return obj, nil
}

// OpenSequential streams the object without the up-front stat.
func (fs *FS) OpenSequential(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	obj, err := fs.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(path, err)
	}
	return obj, nil
}

// Create returns a stream uploading to the object, finalized on Close.
func (fs *FS) Create(ctx context.Context, path string, overwrite bool) (fileio.OutputStream, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if !overwrite {
		if _, err := fs.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err == nil {
			return nil, fileio.PathAlreadyExistsError{Path: path}
		} else if terr := translate(path, err); !fileio.IsNotFound(terr) {
			return nil, terr
		}
	}

	pr, pw := io.Pipe()
	w := &putWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := fs.client.PutObject(ctx, bucket, key, pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		w.done <- translate(path, err)
	}()
	return w, nil
}

// Stat returns the object size.
func (fs *FS) Stat(ctx context.Context, path string) (int64, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return 0, err
	}
	info, err := fs.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, translate(path, err)
	}
	return info.Size, nil
}

// Remove deletes the object, statting first because RemoveObject
// succeeds for absent keys.
func (fs *FS) Remove(ctx context.Context, path string) error {
	bucket, key, err := splitPath(path)
	if err != nil {
		return err
	}
	if _, err := fs.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return translate(path, err)
	}
	return translate(path, fs.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}))
}

type putWriter struct {
	pw     *io.PipeWriter
	done   chan error
	closed bool
}

func (w *putWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	return w.pw.Write(p)
}

func (w *putWriter) Close() error {
	if w.closed {
		return io.ErrClosedPipe
	}
	w.closed = true
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

func splitPath(path string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("objfs: location %q does not name a bucket and key", path)
	}
	return bucket, key, nil
}

func translate(path string, err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fileio.PathNotFoundError{Path: path}
	case "AccessDenied":
		return fileio.PermissionError{Path: path, Detail: err}
	}
	return err
}
