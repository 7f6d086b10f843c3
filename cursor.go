package netzip

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// cursor decodes little-endian fields from a fixed byte window while tracking
// a read position. Every operation that would go past the window returns
// ErrOutOfBounds instead of truncating.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{buf: b}
}

// read returns the next n bytes and advances the position. The returned slice
// aliases the window.
func (c *cursor) read(n int) ([]byte, error) {
	if n < 0 || n > len(c.buf)-c.pos {
		return nil, fmt.Errorf("%w: need %d bytes at position %d of %d", ErrOutOfBounds, n, c.pos, len(c.buf))
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// rest returns all remaining bytes and moves the position to the window end.
func (c *cursor) rest() []byte {
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}

// skip relocates the position by delta, which may be negative. The position
// may land exactly on the window end.
func (c *cursor) skip(delta int) error {
	if p := c.pos + delta; p < 0 || p > len(c.buf) {
		return fmt.Errorf("%w: move by %d from position %d of %d", ErrOutOfBounds, delta, c.pos, len(c.buf))
	} else {
		c.pos = p
	}
	return nil
}

func (c *cursor) atEnd() bool {
	return c.pos == len(c.buf)
}

// match reads len(sig) bytes and compares them against sig.
func (c *cursor) match(sig []byte) error {
	b, err := c.read(len(sig))
	if err != nil {
		return err
	}
	if !bytes.Equal(b, sig) {
		return fmt.Errorf("%w: got 0x%x, expected 0x%x", ErrSignature, b, sig)
	}
	return nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) uint64() (uint64, error) {
	b, err := c.read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// int64 decodes an 8-byte field destined for an offset or size. Values above
// math.MaxInt64 cannot address anything in an io-based source and are rejected
// rather than silently narrowed.
func (c *cursor) int64() (int64, error) {
	v, err := c.uint64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: 0x%x does not fit in int64", ErrOverflow, v)
	}
	return int64(v), nil
}

// matchUint16 reads a 2-byte field that must hold the constant want.
func (c *cursor) matchUint16(want uint16, field string) error {
	v, err := c.uint16()
	if err != nil {
		return err
	}
	if v != want {
		return fmt.Errorf("%w: %s is %d, expected %d", ErrFieldMismatch, field, v, want)
	}
	return nil
}

// matchUint32 reads a 4-byte field that must hold the constant want.
func (c *cursor) matchUint32(want uint32, field string) error {
	v, err := c.uint32()
	if err != nil {
		return err
	}
	if v != want {
		return fmt.Errorf("%w: %s is %d, expected %d", ErrFieldMismatch, field, v, want)
	}
	return nil
}
