// Package azurefs provides the fileio.FileSystem serving abfs, abfss,
// wasb and wasbs locations through the Azure Blob Storage client.
package azurefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-pipeline-go/pipeline"
	"github.com/Azure/azure-storage-blob-go/azblob"

	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/internal/rangeio"
)

const defaultEndpointSuffix = "core.windows.net"

// FS serves Azure blob locations. Paths arrive with the authority
// folded in, either "container@account.suffix/blob/parts" or
// "container/blob/parts" with the account taken from the bag.
type FS struct {
	pipeline    pipeline.Pipeline
	accountName string
	sasToken    string
	protocol    string
}

// New builds an Azure client from the configuration bag. Shared-key,
// SAS-token and connection-string credentials are supported; tenant or
// client-secret credentials are not wired for this client and fail
// construction explicitly rather than misauthenticating.
func New(properties fileio.Properties) (*FS, error) {
	if properties.Get(fileio.AdlsClientSecret, "") != "" {
		return nil, fmt.Errorf("azurefs: %s is set but service-principal authentication is not wired for this client", fileio.AdlsClientSecret)
	}

	accountName := properties.Get(fileio.AdlsAccountName, "")
	accountKey := properties.Get(fileio.AdlsAccountKey, "")
	if cs := properties.Get(fileio.AdlsConnectionString, ""); cs != "" {
		csName, csKey := parseConnectionString(cs)
		if accountName == "" {
			accountName = csName
		}
		if accountKey == "" {
			accountKey = csKey
		}
	}

	credential := azblob.Credential(azblob.NewAnonymousCredential())
	if accountName != "" && accountKey != "" {
		shared, err := azblob.NewSharedKeyCredential(accountName, accountKey)
		if err != nil {
			return nil, err
		}
		credential = shared
	}

	return &FS{
		pipeline:    azblob.NewPipeline(credential, azblob.PipelineOptions{}),
		accountName: accountName,
		sasToken:    strings.TrimPrefix(properties.Get(fileio.AdlsSasToken, ""), "?"),
		protocol:    "https",
	}, nil
}

// blob resolves a folded path to the blob URL it addresses.
func (fs *FS) blob(path string) (azblob.BlockBlobURL, error) {
	authority, blobPath, ok := strings.Cut(path, "/")
	if !ok || authority == "" || blobPath == "" {
		return azblob.BlockBlobURL{}, fmt.Errorf("azurefs: location %q does not name a container and blob", path)
	}

	container := authority
	host := ""
	if c, h, ok := strings.Cut(authority, "@"); ok {
		container, host = c, h
	}
	if host == "" {
		if fs.accountName == "" {
			return azblob.BlockBlobURL{}, fmt.Errorf("azurefs: location %q names no account and %s is not configured", path, fileio.AdlsAccountName)
		}
		host = fmt.Sprintf("%s.blob.%s", fs.accountName, defaultEndpointSuffix)
	}
	// The dfs endpoint is the datalake API surface; blobs are served
	// from the paired blob endpoint.
	host = strings.Replace(host, ".dfs.", ".blob.", 1)

	raw := fmt.Sprintf("%s://%s/%s/%s", fs.protocol, host, container, blobPath)
	if fs.sasToken != "" {
		raw += "?" + fs.sasToken
	}
	u, err := url.Parse(raw)
	if err != nil {
		return azblob.BlockBlobURL{}, err
	}
	return azblob.NewBlockBlobURL(*u, fs.pipeline), nil
}

// Open returns a seekable stream over the blob.
func (fs *FS) Open(ctx context.Context, path string) (fileio.InputStream, error) {
	blob, err := fs.blob(path)
	if err != nil {
		return nil, err
	}
	properties, err := blob.GetProperties(ctx, azblob.BlobAccessConditions{})
	if err != nil {
		return nil, translate(path, err)
	}
	return rangeio.NewReader(properties.ContentLength(), func(offset int64) (io.ReadCloser, error) {
		resp, err := blob.Download(ctx, offset, azblob.CountToEnd, azblob.BlobAccessConditions{}, false)
		if err != nil {
			return nil, translate(path, err)
		}
		return resp.Body(azblob.RetryReaderOptions{MaxRetryRequests: 3}), nil
	}), nil
}

// OpenSequential streams the blob with a single download.
func (fs *FS) OpenSequential(ctx context.Context, path string) (io.ReadCloser, error) {
	blob, err := fs.blob(path)
	if err != nil {
		return nil, err
	}
	resp, err := blob.Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false)
	if err != nil {
		return nil, translate(path, err)
	}
	return resp.Body(azblob.RetryReaderOptions{MaxRetryRequests: 3}), nil
}

// Create returns a stream uploading to the blob, finalized on Close.
func (fs *FS) Create(ctx context.Context, path string, overwrite bool) (fileio.OutputStream, error) {
	blob, err := fs.blob(path)
	if err != nil {
		return nil, err
	}
	if !overwrite {
		if _, err := blob.GetProperties(ctx, azblob.BlobAccessConditions{}); err == nil {
			return nil, fileio.PathAlreadyExistsError{Path: path}
		} else if !is404(err) {
			return nil, translate(path, err)
		}
	}

	pr, pw := io.Pipe()
	w := &uploadWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := azblob.UploadStreamToBlockBlob(ctx, pr, blob, azblob.UploadStreamToBlockBlobOptions{
			BufferSize: 4 * 1024 * 1024,
			MaxBuffers: 4,
		})
		_ = pr.CloseWithError(err)
		w.done <- translate(path, err)
	}()
	return w, nil
}

// Stat returns the blob size.
func (fs *FS) Stat(ctx context.Context, path string) (int64, error) {
	blob, err := fs.blob(path)
	if err != nil {
		return 0, err
	}
	properties, err := blob.GetProperties(ctx, azblob.BlobAccessConditions{})
	if err != nil {
		return 0, translate(path, err)
	}
	return properties.ContentLength(), nil
}

// Remove deletes the blob.
func (fs *FS) Remove(ctx context.Context, path string) error {
	blob, err := fs.blob(path)
	if err != nil {
		return err
	}
	if _, err := blob.Delete(ctx, azblob.DeleteSnapshotsOptionNone, azblob.BlobAccessConditions{}); err != nil {
		return translate(path, err)
	}
	return nil
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

func parseConnectionString(cs string) (accountName, accountKey string) {
	for _, part := range strings.Split(cs, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch k {
		case "AccountName":
			accountName = v
		case "AccountKey":
			accountKey = v
		}
	}
	return accountName, accountKey
}

func is404(err error) bool {
	var serr azblob.StorageError
	if errors.As(err, &serr) {
		if resp := serr.Response(); resp != nil {
			return resp.StatusCode == http.StatusNotFound
		}
	}
	return false
}

func translate(path string, err error) error {
	if err == nil {
		return nil
	}
	var serr azblob.StorageError
	if errors.As(err, &serr) {
		if resp := serr.Response(); resp != nil {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return fileio.PathNotFoundError{Path: path}
			case http.StatusConflict:
				return fileio.PathAlreadyExistsError{Path: path}
			case http.StatusForbidden, http.StatusUnauthorized:
				return fileio.PermissionError{Path: path, Detail: err}
			}
		}
	}
	return err
}
