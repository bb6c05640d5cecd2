// Package base provides the generic FileIO implementation the concrete
// backends build on. A backend supplies its name and an FSFactory that
// constructs the filesystem client for a scheme; base contributes
// everything else: handle construction, delete, and memoized scheme
// resolution.
//
// The canonical way to use it is to embed an IO in the exported backend
// type behind a private struct, so the embed is not part of the
// backend's API surface:
//
//	type baseEmbed struct {
//		*base.IO
//	}
//
//	type FileIO struct {
//		baseEmbed
//	}
//
// The backend can intercept any FileIO method by declaring it on the
// outer type; everything it does not intercept proxies through base.
package base

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/tableform/tableio/fileio"
)

// FSFactory constructs the filesystem client serving one scheme. It
// must return a fileio.UnsupportedSchemeError for schemes the backend
// does not serve; any other error is reported to the caller as a real
// construction failure.
type FSFactory func(ctx context.Context, scheme string, properties fileio.Properties) (fileio.FileSystem, error)

// IO is a generic fileio.FileIO backed by an FSFactory. Scheme
// resolution is memoized for the lifetime of the instance: repeated
// resolution of the same scheme returns the identical client, and
// concurrent first access constructs it at most once.
type IO struct {
	name       string
	properties fileio.Properties
	newFS      FSFactory

	mu    sync.RWMutex
	group singleflight.Group
	fs    map[string]fileio.FileSystem
}

// New returns an IO for the named backend. No filesystem client is
// constructed until its scheme is first resolved.
func New(name string, properties fileio.Properties, newFS FSFactory) *IO {
	return &IO{
		name:       name,
		properties: properties,
		newFS:      newFS,
		fs:         make(map[string]fileio.FileSystem),
	}
}

// Name returns the backend identifier.
func (io *IO) Name() string {
	return io.name
}

// Properties returns the configuration bag the instance was constructed
// with.
func (io *IO) Properties() fileio.Properties {
	return io.properties
}

// NewInput returns an InputFile for the location.
func (io *IO) NewInput(location string) fileio.InputFile {
	return &inputFile{file: newFile(io, location)}
}

// NewOutput returns an OutputFile for the location.
func (io *IO) NewOutput(location string) fileio.OutputFile {
	return &outputFile{file: newFile(io, location)}
}

// Delete removes the file at the location.
func (io *IO) Delete(ctx context.Context, location string) error {
	scheme, _, path := fileio.ParseLocation(location)
	fs, err := io.FSByScheme(ctx, scheme)
	if err != nil {
		return err
	}
	return fs.Remove(ctx, path)
}

// FSByScheme resolves a scheme to its filesystem client, constructing
// it on first access. Only successful construction is memoized.
func (io *IO) FSByScheme(ctx context.Context, scheme string) (fileio.FileSystem, error) {
	io.mu.RLock()
	fs, ok := io.fs[scheme]
	io.mu.RUnlock()
	if ok {
		return fs, nil
	}

	v, err, _ := io.group.Do(scheme, func() (interface{}, error) {
		io.mu.RLock()
		fs, ok := io.fs[scheme]
		io.mu.RUnlock()
		if ok {
			return fs, nil
		}

		fs, err := io.newFS(ctx, scheme, io.properties)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"io-impl": io.name,
			"scheme":  scheme,
		}).Debug("constructed filesystem client")

		io.mu.Lock()
		io.fs[scheme] = fs
		io.mu.Unlock()
		return fs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(fileio.FileSystem), nil
}

// FSByURI parses the location and resolves its scheme.
func (io *IO) FSByURI(ctx context.Context, uri string) (fileio.FileSystem, error) {
	scheme, _, _ := fileio.ParseLocation(uri)
	return io.FSByScheme(ctx, scheme)
}

// file carries the state shared by input and output handles: the
// original location and its parsed form. Handles are cheap value
// objects holding no open resources.
type file struct {
	io       *IO
	location string
	scheme   string
	path     string
}

func newFile(io *IO, location string) file {
	scheme, _, path := fileio.ParseLocation(location)
	return file{io: io, location: location, scheme: scheme, path: path}
}

func (f *file) Location() string {
	return f.location
}

func (f *file) resolve(ctx context.Context) (fileio.FileSystem, error) {
	return f.io.FSByScheme(ctx, f.scheme)
}

func (f *file) Length(ctx context.Context) (int64, error) {
	fs, err := f.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return fs.Stat(ctx, f.path)
}

func (f *file) Exists(ctx context.Context) (bool, error) {
	fs, err := f.resolve(ctx)
	if err != nil {
		return false, err
	}
	if _, err := fs.Stat(ctx, f.path); err != nil {
		if fileio.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type inputFile struct {
	file
}

func (f *inputFile) Open(ctx context.Context) (fileio.InputStream, error) {
	fs, err := f.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return fs.Open(ctx, f.path)
}

func (f *inputFile) OpenSequential(ctx context.Context) (io.ReadCloser, error) {
	fs, err := f.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if so, ok := fs.(fileio.SequentialOpener); ok {
		return so.OpenSequential(ctx, f.path)
	}
	return fs.Open(ctx, f.path)
}

type outputFile struct {
	file
}

func (f *outputFile) Create(ctx context.Context) (fileio.OutputStream, error) {
	return f.create(ctx, false)
}

func (f *outputFile) CreateOrOverwrite(ctx context.Context) (fileio.OutputStream, error) {
	return f.create(ctx, true)
}

func (f *outputFile) create(ctx context.Context, overwrite bool) (fileio.OutputStream, error) {
	fs, err := f.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return fs.Create(ctx, f.path, overwrite)
}

func (f *outputFile) ToInputFile() fileio.InputFile {
	return &inputFile{file: f.file}
}
