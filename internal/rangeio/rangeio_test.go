package rangeio_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableform/tableio/internal/rangeio"
)

// fakeRemote hands out range readers over a fixed payload and counts
// how many requests were opened.
type fakeRemote struct {
	payload string
	opens   int
}

func (f *fakeRemote) open(offset int64) (io.ReadCloser, error) {
	f.opens++
	return io.NopCloser(strings.NewReader(f.payload[offset:])), nil
}

func TestSequentialReadOpensOnce(t *testing.T) {
	remote := &fakeRemote{payload: "0123456789"}
	r := rangeio.NewReader(int64(len(remote.payload)), remote.open)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, remote.payload, string(got))
	assert.Equal(t, 1, remote.opens)
}

func TestSeekReopensAtOffset(t *testing.T) {
	remote := &fakeRemote{payload: "0123456789"}
	r := rangeio.NewReader(int64(len(remote.payload)), remote.open)
	defer r.Close()

	buf := make([]byte, 2)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "01", string(buf))

	off, err := r.Seek(7, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(7), off)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "789", string(got))
	assert.Equal(t, 2, remote.opens)
}

func TestSeekToCurrentDoesNotReopen(t *testing.T) {
	remote := &fakeRemote{payload: "0123456789"}
	r := rangeio.NewReader(int64(len(remote.payload)), remote.open)
	defer r.Close()

	buf := make([]byte, 4)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)

	tell, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(4), tell)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(got))
	assert.Equal(t, 1, remote.opens)
}

func TestSeekEnd(t *testing.T) {
	remote := &fakeRemote{payload: "0123456789"}
	r := rangeio.NewReader(int64(len(remote.payload)), remote.open)
	defer r.Close()

	off, err := r.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(7), off)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "789", string(got))
}

func TestReadPastEnd(t *testing.T) {
	remote := &fakeRemote{payload: "01"}
	r := rangeio.NewReader(int64(len(remote.payload)), remote.open)
	defer r.Close()

	_, err := r.Seek(5, io.SeekStart)
	require.NoError(t, err)

	buf := make([]byte, 1)
	_, err = r.Read(buf)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, remote.opens)
}

func TestNegativeSeekRejected(t *testing.T) {
	remote := &fakeRemote{payload: "01"}
	r := rangeio.NewReader(int64(len(remote.payload)), remote.open)
	defer r.Close()

	_, err := r.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestTruncatedRangeResponseReopens(t *testing.T) {
	// A remote may end a range response early; the reader must resume
	// at the right offset instead of reporting EOF.
	remote := &fakeRemote{payload: "0123456789"}
	truncated := 0
	open := func(offset int64) (io.ReadCloser, error) {
		truncated++
		end := offset + 3
		if end > int64(len(remote.payload)) {
			end = int64(len(remote.payload))
		}
		return io.NopCloser(strings.NewReader(remote.payload[offset:end])), nil
	}
	r := rangeio.NewReader(int64(len(remote.payload)), open)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, remote.payload, string(got))
	assert.Equal(t, 4, truncated)
}

func TestUseAfterClose(t *testing.T) {
	remote := &fakeRemote{payload: "01"}
	r := rangeio.NewReader(int64(len(remote.payload)), remote.open)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.Read(make([]byte, 1))
	assert.Equal(t, io.ErrClosedPipe, err)
}
