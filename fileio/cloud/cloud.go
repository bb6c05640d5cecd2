// Package cloud implements the alternate FileIO backend. It reaches
// object stores through portable clients: any S3-compatible endpoint
// via the MinIO client, Google Cloud Storage, and Azure Blob Storage,
// plus the local filesystem. It covers the cloud schemes the native
// backend does not serve, at the cost of an extra client layer.
package cloud

import (
	"context"

	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/fileio/base"
	"github.com/tableform/tableio/fileio/factory"
	"github.com/tableform/tableio/internal/azurefs"
	"github.com/tableform/tableio/internal/gcsfs"
	"github.com/tableform/tableio/internal/localfs"
	"github.com/tableform/tableio/internal/objfs"
)

// Name is the canonical identifier of this backend.
const Name = "cloud"

func init() {
	factory.Register(Name, &fileIOFactory{})
}

type fileIOFactory struct{}

func (f *fileIOFactory) Create(properties fileio.Properties) (fileio.FileIO, error) {
	return New(properties), nil
}

type baseEmbed struct {
	*base.IO
}

// FileIO is the cloud backend. Filesystem clients are constructed on
// first resolution of their scheme, never at FileIO construction.
type FileIO struct {
	baseEmbed
}

// New returns a cloud FileIO over the given configuration bag.
func New(properties fileio.Properties) *FileIO {
	return &FileIO{baseEmbed{base.New(Name, properties, newFS)}}
}

func newFS(ctx context.Context, scheme string, properties fileio.Properties) (fileio.FileSystem, error) {
	switch scheme {
	case fileio.LocalScheme:
		return localfs.New(), nil
	case "s3", "s3a", "s3n":
		return objfs.New(properties)
	case "gs":
		return gcsfs.New(ctx, properties)
	case "abfs", "abfss", "wasb", "wasbs":
		return azurefs.New(properties)
	default:
		return nil, fileio.UnsupportedSchemeError{Scheme: scheme, FileIO: Name}
	}
}
