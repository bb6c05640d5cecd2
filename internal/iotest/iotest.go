// Package iotest holds the conformance suite every fileio.FileSystem
// client is expected to pass. Client packages call RunFileSystemSuite
// from their own tests with a constructor for a fresh, empty store.
package iotest

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableform/tableio/fileio"
)

// Harness supplies the suite with a client under test.
type Harness struct {
	// FS is the client to exercise. It must start empty.
	FS fileio.FileSystem

	// Path maps a test-local file name to a path in the client's
	// convention, e.g. into a temp directory for the local client.
	Path func(name string) string
}

// RunFileSystemSuite exercises the FileSystem contract: stat, open and
// remove of missing paths, exclusive create, overwrite, seekable reads
// and delete.
func RunFileSystemSuite(t *testing.T, h Harness) {
	ctx := context.Background()

	t.Run("MissingPath", func(t *testing.T) {
		path := h.Path("missing.parquet")

		_, err := h.FS.Stat(ctx, path)
		assert.True(t, fileio.IsNotFound(err), "Stat on a missing path: %v", err)

		_, err = h.FS.Open(ctx, path)
		assert.True(t, fileio.IsNotFound(err), "Open on a missing path: %v", err)

		err = h.FS.Remove(ctx, path)
		assert.True(t, fileio.IsNotFound(err), "Remove on a missing path: %v", err)
	})

	t.Run("CreateAndRead", func(t *testing.T) {
		path := h.Path("data.parquet")
		contents := []byte("hello world")

		w, err := h.FS.Create(ctx, path, false)
		require.NoError(t, err)
		n, err := w.Write(contents)
		require.NoError(t, err)
		require.Equal(t, len(contents), n)
		require.NoError(t, w.Close())

		size, err := h.FS.Stat(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, int64(len(contents)), size)

		r, err := h.FS.Open(ctx, path)
		require.NoError(t, err)
		defer r.Close()

		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, contents, got)

		// Seek back into the stream and verify tell via SeekCurrent.
		off, err := r.Seek(6, io.SeekStart)
		require.NoError(t, err)
		assert.Equal(t, int64(6), off)

		tell, err := r.Seek(0, io.SeekCurrent)
		require.NoError(t, err)
		assert.Equal(t, int64(6), tell)

		got, err = io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, []byte("world"), got)
	})

	t.Run("ExclusiveCreate", func(t *testing.T) {
		path := h.Path("exclusive.parquet")

		w, err := h.FS.Create(ctx, path, false)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		_, err = h.FS.Create(ctx, path, false)
		assert.True(t, fileio.IsAlreadyExists(err), "Create without overwrite on an existing path: %v", err)
	})

	t.Run("Overwrite", func(t *testing.T) {
		path := h.Path("overwrite.parquet")

		w, err := h.FS.Create(ctx, path, false)
		require.NoError(t, err)
		_, err = w.Write([]byte("first version"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		w, err = h.FS.Create(ctx, path, true)
		require.NoError(t, err)
		_, err = w.Write([]byte("second"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		size, err := h.FS.Stat(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, int64(len("second")), size)
	})

	t.Run("Remove", func(t *testing.T) {
		path := h.Path("removed.parquet")

		w, err := h.FS.Create(ctx, path, false)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		require.NoError(t, h.FS.Remove(ctx, path))

		_, err = h.FS.Stat(ctx, path)
		assert.True(t, fileio.IsNotFound(err), "Stat after Remove: %v", err)
	})
}
