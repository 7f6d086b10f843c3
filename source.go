package netzip

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Source provides random access to the bytes of an archive. It is the only
// I/O boundary of this package: a file, an HTTP object, an S3 object, or an
// in-memory buffer all satisfy it.
//
// Implementations must be safe for concurrent calls, or document that callers
// have to serialize access themselves; [Archive.Get] may be invoked from
// multiple goroutines against the same Source.
type Source interface {
	// ReadAt returns size bytes starting at offset.
	//
	// A negative offset is interpreted relative to the end of the source
	// (-22 means "the last 22 bytes"). A negative size reads all bytes from
	// offset to the end. ReadAt fails with ErrOutOfBounds if offset lands at
	// or past the end of the source, or if offset+size does.
	ReadAt(ctx context.Context, offset, size int64) ([]byte, error)

	// Size returns the total addressable length of the source.
	Size(ctx context.Context) (int64, error)
}

// Window resolves a Source read request against the total source length,
// applying the negative-offset and negative-size conventions documented on
// [Source.ReadAt]. It returns the absolute start offset and byte count, or
// ErrOutOfBounds if the request references bytes outside [0, total).
//
// Source implementations should use Window so that all of them agree on the
// contract.
func Window(offset, size, total int64) (start, n int64, err error) {
	start = offset
	if start < 0 {
		start += total
	}
	if start < 0 || start >= total {
		return 0, 0, fmt.Errorf("%w: offset %d with source size %d", ErrOutOfBounds, offset, total)
	}

	if size < 0 {
		return start, total - start, nil
	}
	if size > total-start {
		return 0, 0, fmt.Errorf("%w: %d bytes at offset %d with source size %d", ErrOutOfBounds, size, start, total)
	}
	return start, size, nil
}

// BytesSource is a Source over an in-memory buffer.
//
// Reads return slices aliasing the buffer; the buffer must not be mutated for
// the lifetime of any Archive built on top of it.
type BytesSource struct {
	b []byte
}

func NewBytesSource(b []byte) *BytesSource {
	return &BytesSource{b: b}
}

func (s *BytesSource) ReadAt(_ context.Context, offset, size int64) ([]byte, error) {
	start, n, err := Window(offset, size, int64(len(s.b)))
	if err != nil {
		return nil, err
	}
	return s.b[start : start+n], nil
}

func (s *BytesSource) Size(context.Context) (int64, error) {
	return int64(len(s.b)), nil
}

// ReaderAtSource adapts an io.ReaderAt with a known length, such as *os.File,
// into a Source. It is safe for concurrent use whenever the underlying
// io.ReaderAt is; os.File qualifies.
type ReaderAtSource struct {
	r    io.ReaderAt
	size int64
}

func NewReaderAtSource(r io.ReaderAt, size int64) *ReaderAtSource {
	return &ReaderAtSource{r: r, size: size}
}

func (s *ReaderAtSource) ReadAt(ctx context.Context, offset, size int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start, n, err := Window(offset, size, s.size)
	if err != nil {
		return nil, err
	}

	b := make([]byte, n)
	switch readN, err := s.r.ReadAt(b, start); {
	case int64(readN) == n:
		return b, nil
	case err == nil || errors.Is(err, io.EOF):
		return nil, fmt.Errorf("%w: read %d bytes at offset %d, got %d", ErrOutOfBounds, n, start, readN)
	default:
		return nil, fmt.Errorf("read at offset %d error: %w", start, err)
	}
}

func (s *ReaderAtSource) Size(context.Context) (int64, error) {
	return s.size, nil
}
