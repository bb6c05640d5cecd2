// Package hdfsfs provides the fileio.FileSystem serving hdfs:// and
// viewfs:// locations through the colinmarc HDFS client.
package hdfsfs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path"

	"github.com/colinmarc/hdfs/v2"

	"github.com/tableform/tableio/fileio"
)

const defaultPort = "8020"

// FS serves distributed-filesystem locations. Paths arrive bare, with
// the authority kept separate by the location parser; the namenode
// address comes from the configuration bag, not the URI, because the
// client is memoized per scheme rather than per authority.
type FS struct {
	client *hdfs.Client
}

// New dials the configured namenode and returns the client.
func New(properties fileio.Properties) (*FS, error) {
	host := properties.Get(fileio.HDFSHost, "")
	if host == "" {
		return nil, fmt.Errorf("hdfsfs: %s is not configured", fileio.HDFSHost)
	}
	if ticket := properties.Get(fileio.HDFSKerberosTicket, ""); ticket != "" {
		return nil, fmt.Errorf("hdfsfs: %s is set but kerberos authentication is not wired for this client", fileio.HDFSKerberosTicket)
	}

	options := hdfs.ClientOptions{
		Addresses: []string{net.JoinHostPort(host, properties.Get(fileio.HDFSPort, defaultPort))},
		User:      properties.Get(fileio.HDFSUser, ""),
	}
	client, err := hdfs.NewClient(options)
	if err != nil {
		return nil, err
	}
	return &FS{client: client}, nil
}

// Open returns the HDFS file reader; *hdfs.FileReader satisfies
// InputStream as-is.
func (fs *FS) Open(ctx context.Context, name string) (fileio.InputStream, error) {
	f, err := fs.client.Open(name)
	if err != nil {
		return nil, translate(name, err)
	}
	return f, nil
}

// Create opens name for writing, creating parent directories as
// needed. HDFS files are immutable once written, so overwrite removes
// the existing file first.
func (fs *FS) Create(ctx context.Context, name string, overwrite bool) (fileio.OutputStream, error) {
	if _, err := fs.client.Stat(name); err == nil {
		if !overwrite {
			return nil, fileio.PathAlreadyExistsError{Path: name}
		}
		if err := fs.client.Remove(name); err != nil {
			return nil, translate(name, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, translate(name, err)
	}

	if err := fs.client.MkdirAll(path.Dir(name), 0o755); err != nil {
		return nil, translate(name, err)
	}
	w, err := fs.client.Create(name)
	if err != nil {
		return nil, translate(name, err)
	}
	return w, nil
}

// Stat returns the file size.
func (fs *FS) Stat(ctx context.Context, name string) (int64, error) {
	fi, err := fs.client.Stat(name)
	if err != nil {
		return 0, translate(name, err)
	}
	return fi.Size(), nil
}

// Remove deletes the file.
func (fs *FS) Remove(ctx context.Context, name string) error {
	if err := fs.client.Remove(name); err != nil {
		return translate(name, err)
	}
	return nil
}

func translate(name string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fileio.PathNotFoundError{Path: name}
	case errors.Is(err, os.ErrExist):
		return fileio.PathAlreadyExistsError{Path: name}
	case errors.Is(err, os.ErrPermission):
		return fileio.PermissionError{Path: name, Detail: err}
	default:
		return err
	}
}
