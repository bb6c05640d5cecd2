// Package fileio defines the file-access contracts used by table-format
// readers and writers.
//
// Table code needs to read or write a file at a given location as a
// seekable stream, check that a file exists, and delete a file by
// location. A FileIO implementation is responsible for handing out
// InputFile and OutputFile instances for a location and for resolving a
// URI scheme to the underlying filesystem client that serves it. The
// concrete backends live in their own packages and register themselves
// with the factory; callers obtain one through tableio.LoadFileIO and
// never name a backend at the call site.
package fileio

import (
	"context"
	"io"
)

// InputStream is the capability set required of a handle returned by
// InputFile.Open. The current position is Seek(0, io.SeekCurrent). Any
// value with this method set qualifies; *os.File, *hdfs.FileReader and
// *minio.Object all satisfy it without wrapping.
type InputStream interface {
	io.Reader
	io.Seeker
	io.Closer
}

// OutputStream is the capability set required of a handle returned by
// OutputFile.Create. Writes are only durable once Close returns nil.
type OutputStream = io.WriteCloser

// File is any location-bound handle. Both InputFile and OutputFile
// satisfy it.
type File interface {
	// Location returns the fully-qualified location the handle is bound to.
	Location() string
}

// InputFile is a location-bound handle for reading a single file.
// Constructing one performs no I/O; resources are only acquired by Open.
type InputFile interface {
	File

	// Length returns the total length of the file in bytes.
	Length(ctx context.Context) (int64, error)

	// Exists reports whether the location exists. A PermissionError is
	// returned when the storage layer refuses the check.
	Exists(ctx context.Context) (bool, error)

	// Open returns a seekable stream over the file contents. It returns
	// a PathNotFoundError if the location is absent and a
	// PermissionError if it cannot be accessed.
	Open(ctx context.Context) (InputStream, error)

	// OpenSequential returns a stream for strictly sequential
	// consumption. Backends with a cheaper non-seekable path use it;
	// others serve the same stream Open would.
	OpenSequential(ctx context.Context) (io.ReadCloser, error)
}

// OutputFile is a location-bound handle for writing a single file.
// Constructing one performs no I/O; resources are only acquired by
// Create or CreateOrOverwrite.
type OutputFile interface {
	File

	// Length returns the total length of the file in bytes.
	Length(ctx context.Context) (int64, error)

	// Exists reports whether the location exists. A PermissionError is
	// returned when the storage layer refuses the check.
	Exists(ctx context.Context) (bool, error)

	// Create returns a stream writing to the location. It returns a
	// PathAlreadyExistsError if the location already exists.
	Create(ctx context.Context) (OutputStream, error)

	// CreateOrOverwrite returns a stream writing to the location,
	// replacing any existing file.
	CreateOrOverwrite(ctx context.Context) (OutputStream, error)

	// ToInputFile returns an input-mode handle for the same location.
	ToInputFile() InputFile
}

// FileSystem is the per-scheme client surface a FileIO resolves to.
// The path argument follows the convention established by ParseLocation
// for the client's scheme: hdfs/viewfs clients receive the bare path,
// all other schemes receive the authority folded into the path.
type FileSystem interface {
	// Open returns a seekable stream over the file at path.
	Open(ctx context.Context, path string) (InputStream, error)

	// Create returns a stream writing to path. With overwrite false it
	// returns a PathAlreadyExistsError if path exists.
	Create(ctx context.Context, path string, overwrite bool) (OutputStream, error)

	// Stat returns the size of the file at path, or a PathNotFoundError.
	Stat(ctx context.Context, path string) (int64, error)

	// Remove deletes the file at path, returning a PathNotFoundError if
	// it is absent.
	Remove(ctx context.Context, path string) error
}

// SequentialOpener is an optional FileSystem capability for backends
// that can serve sequential reads more cheaply than seekable ones,
// such as a single streaming GET instead of ranged requests.
type SequentialOpener interface {
	OpenSequential(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileIO hands out file handles and resolves URI schemes to filesystem
// clients. Instances are long-lived, typically one per table or
// session, and safe for concurrent use.
type FileIO interface {
	// Name returns the backend identifier, e.g. "native" or "cloud".
	Name() string

	// Properties returns the configuration bag the instance was
	// constructed with. Callers must not mutate it.
	Properties() Properties

	// NewInput returns an InputFile for the location. Pure
	// construction; never fails and performs no I/O.
	NewInput(location string) InputFile

	// NewOutput returns an OutputFile for the location. Pure
	// construction; never fails and performs no I/O.
	NewOutput(location string) OutputFile

	// Delete removes the file at the location. It returns a
	// PathNotFoundError if the location is absent and a PermissionError
	// if access is refused.
	Delete(ctx context.Context, location string) error

	// FSByScheme resolves a URI scheme to the filesystem client serving
	// it. Resolution is memoized: repeated calls with the same scheme
	// return the identical client for the lifetime of the instance. An
	// UnsupportedSchemeError is returned for schemes the backend does
	// not serve; callers use this to probe compatibility.
	FSByScheme(ctx context.Context, scheme string) (FileSystem, error)

	// FSByURI parses the location and resolves its scheme.
	FSByURI(ctx context.Context, uri string) (FileSystem, error)
}

// DeleteFile removes the file a handle is bound to. It covers the
// delete-by-handle form of the FileIO contract.
func DeleteFile(ctx context.Context, io FileIO, f File) error {
	return io.Delete(ctx, f.Location())
}
