// Package native implements the primary FileIO backend. Each scheme is
// served by the native client for its storage system: the local
// filesystem directly, HDFS through the namenode protocol, and S3
// through the AWS SDK. It is the default choice because the native
// clients carry the least overhead per request.
package native

import (
	"context"

	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/fileio/base"
	"github.com/tableform/tableio/fileio/factory"
	"github.com/tableform/tableio/internal/hdfsfs"
	"github.com/tableform/tableio/internal/localfs"
	"github.com/tableform/tableio/internal/s3fs"
)

// Name is the canonical identifier of this backend.
const Name = "native"

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

// FileIO is the native backend. Filesystem clients are constructed on
// first resolution of their scheme, never at FileIO construction.
type FileIO struct {
	baseEmbed
}

// New returns a native FileIO over the given configuration bag.
func New(properties fileio.Properties) *FileIO {
	return &FileIO{baseEmbed{base.New(Name, properties, newFS)}}
}

func newFS(ctx context.Context, scheme string, properties fileio.Properties) (fileio.FileSystem, error) {
	switch scheme {
	case fileio.LocalScheme:
		return localfs.New(), nil
	case fileio.SchemeHDFS, fileio.SchemeViewFS:
		return hdfsfs.New(properties)
	case "s3", "s3a", "s3n":
		return s3fs.New(ctx, properties)
	default:
		return nil, fileio.UnsupportedSchemeError{Scheme: scheme, FileIO: Name}
	}
}
