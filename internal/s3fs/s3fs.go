// Package s3fs provides the fileio.FileSystem serving s3:// locations
// through the AWS SDK. Reads are ranged GetObject requests behind a
// seekable reader; writes stream through a managed multipart upload.
package s3fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/internal/rangeio"
)

// FS serves s3 locations. Paths arrive with the bucket folded in by the
// location parser ("bucket/key/parts"), matching what the client
// expects.
type FS struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// New builds an S3 client from the configuration bag. Construction
// performs no network calls; credentials and endpoint problems surface
// on the first request.
func New(ctx context.Context, properties fileio.Properties) (*FS, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(properties.Get(fileio.S3Region, properties.Get(fileio.ClientRegion, "us-east-1"))),
	}

	accessKey := properties.Get(fileio.S3AccessKeyID, properties.Get(fileio.ClientAccessKeyID, ""))
	secretKey := properties.Get(fileio.S3SecretAccessKey, properties.Get(fileio.ClientSecretAccessKey, ""))
	if accessKey != "" && secretKey != "" {
		token := properties.Get(fileio.S3SessionToken, properties.Get(fileio.ClientSessionToken, ""))
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, token)))
	}

	httpClient, err := buildHTTPClient(properties)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(httpClient))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := properties.Get(fileio.S3Endpoint, ""); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if properties.GetBool(fileio.S3PathStyleAccess, false) {
			o.UsePathStyle = true
		}
	})

	return &FS{
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func buildHTTPClient(properties fileio.Properties) (*awshttp.BuildableClient, error) {
	proxy := properties.Get(fileio.S3ProxyURI, "")
	timeout := properties.GetDuration(fileio.S3ConnectTimeout, 0)
	if proxy == "" && timeout == 0 {
		return nil, nil
	}

	client := awshttp.NewBuildableClient()
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("s3fs: invalid %s: %w", fileio.S3ProxyURI, err)
		}
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.Proxy = http.ProxyURL(proxyURL)
		})
	}
	if timeout > 0 {
		client = client.WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = timeout
		})
	}
	return client, nil
}

// Open returns a seekable stream over the object, sized by a HeadObject
// up front and read through ranged GetObject requests.
func (fs *FS) Open(ctx context.Context, path string) (fileio.InputStream, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	size, err := fs.head(ctx, path, bucket, key)
	if err != nil {
		return nil, err
	}
	return rangeio.NewReader(size, func(offset int64) (io.ReadCloser, error) {
		resp, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Range:  aws.String(fmt.Sprintf("bytes=%d-", offset)),
		})
		if err != nil {
			return nil, translate(path, err)
		}
		return resp.Body, nil
	}), nil
}

// OpenSequential streams the object with a single GetObject.
func (fs *FS) OpenSequential(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	resp, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translate(path, err)
	}
	return resp.Body, nil
}

// Create returns a stream uploading to the object. The upload runs in
// the background fed by a pipe and is only finalized when the stream is
// closed; Close reports the upload result.
func (fs *FS) Create(ctx context.Context, path string, overwrite bool) (fileio.OutputStream, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if !overwrite {
		// S3 has no native create-if-absent for multipart uploads, so
		// probe first. Racing creators can still both win; the table
		// format layers its own commit protocol above this.
		if _, err := fs.head(ctx, path, bucket, key); err == nil {
			return nil, fileio.PathAlreadyExistsError{Path: path}
		} else if !fileio.IsNotFound(err) {
			return nil, err
		}
	}

	pr, pw := io.Pipe()
	w := &uploadWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := fs.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   pr,
		})
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
	return fs.head(ctx, path, bucket, key)
}

// Remove deletes the object. DeleteObject succeeds for absent keys, so
// existence is checked first to honor the not-found contract.
func (fs *FS) Remove(ctx context.Context, path string) error {
	bucket, key, err := splitPath(path)
	if err != nil {
		return err
	}
	if _, err := fs.head(ctx, path, bucket, key); err != nil {
		return err
	}
	_, err = fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return translate(path, err)
}

func (fs *FS) head(ctx context.Context, path, bucket, key string) (int64, error) {
	resp, err := fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, translate(path, err)
	}
	if resp.ContentLength == nil {
		return 0, nil
	}
	return *resp.ContentLength, nil
}

func splitPath(path string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3fs: location %q does not name a bucket and key", path)
	}
	return bucket, key, nil
}

func translate(path string, err error) error {
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return fileio.PathNotFoundError{Path: path}
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden":
			return fileio.PermissionError{Path: path, Detail: err}
		}
	}
	return err
}

type uploadWriter struct {
	pw     *io.PipeWriter
	done   chan error
	closed bool
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	return w.pw.Write(p)
}

func (w *uploadWriter) Close() error {
	if w.closed {
		return io.ErrClosedPipe
	}
	w.closed = true
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
