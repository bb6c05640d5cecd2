package memfs_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/internal/iotest"
	"github.com/tableform/tableio/internal/memfs"
)

func TestFileSystemSuite(t *testing.T) {
	iotest.RunFileSystemSuite(t, iotest.Harness{
		FS:   memfs.New(),
		Path: func(name string) string { return "warehouse/db/table/" + name },
	})
}

func TestCommitOnClose(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()

	w, err := fs.Create(ctx, "pending", false)
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)

	// Not visible until the stream is closed.
	_, err = fs.Stat(ctx, "pending")
	assert.True(t, fileio.IsNotFound(err))

	require.NoError(t, w.Close())
	size, err := fs.Stat(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
}

func TestExclusiveCommitLosesRace(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()

	first, err := fs.Create(ctx, "contended", false)
	require.NoError(t, err)
	second, err := fs.Create(ctx, "contended", false)
	require.NoError(t, err)

	require.NoError(t, first.Close())
	err = second.Close()
	assert.True(t, fileio.IsAlreadyExists(err), "late committer must lose: %v", err)
}

func TestConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()

	w, err := fs.Create(ctx, "shared", false)
	require.NoError(t, err)
	_, err = w.Write([]byte("shared contents"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := fs.Open(ctx, "shared")
			assert.NoError(t, err)
			defer r.Close()
			buf := make([]byte, 6)
			_, err = r.Read(buf)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
