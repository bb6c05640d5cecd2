// Package rangeio adapts object stores that serve byte-range requests
// into seekable input streams. A Reader keeps one open range request at
// a time and reopens at the new offset after a seek, so sequential
// consumers pay for a single request while seeking consumers get
// correct random access.
package rangeio

import (
	"fmt"
	"io"
)

// OpenRange opens a stream over the remainder of an object starting at
// offset.
type OpenRange func(offset int64) (io.ReadCloser, error)

// Reader is an io.ReadSeekCloser over a ranged remote object of known
// size. Not safe for concurrent use, like any stream handle.
type Reader struct {
	open   OpenRange
	size   int64
	offset int64
	body   io.ReadCloser
	closed bool
}

// NewReader returns a Reader over an object of the given size.
func NewReader(size int64, open OpenRange) *Reader {
	return &Reader{open: open, size: size}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, io.ErrClosedPipe
	}
	if r.offset >= r.size {
		return 0, io.EOF
	}
	if r.body == nil {
		body, err := r.open(r.offset)
		if err != nil {
			return 0, err
		}
		r.body = body
	}
	n, err := r.body.Read(p)
	r.offset += int64(n)
	if err == io.EOF && r.offset < r.size {
		// The range response ended early; reopen on the next read.
		r.body.Close()
		r.body = nil
		err = nil
		if n == 0 {
			return r.Read(p)
		}
	}
	return n, err
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, io.ErrClosedPipe
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.offset + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return 0, fmt.Errorf("rangeio: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("rangeio: negative offset %d", abs)
	}
	if abs != r.offset && r.body != nil {
		if err := r.body.Close(); err != nil {
			return 0, err
		}
		r.body = nil
	}
	r.offset = abs
	return abs, nil
}

func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.body != nil {
		return r.body.Close()
	}
	return nil
}
