package netzip

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	lfhSig       = 0x04034b50
	cdfhSig      = 0x02014b50
	eocdSig      = 0x06054b50
	eocd64Sig    = 0x06064b50
	locator64Sig = 0x07064b50
)

var (
	lfhSigBytes       = putUint32(lfhSig)
	cdfhSigBytes      = putUint32(cdfhSig)
	eocdSigBytes      = putUint32(eocdSig)
	eocd64SigBytes    = putUint32(eocd64Sig)
	locator64SigBytes = putUint32(locator64Sig)
)

func putUint32(v uint32) (b []byte) {
	b = make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

const (
	// eocdLen is the size of the EOCD record without its comment.
	eocdLen = 22
	// locator64Len is the size of the ZIP64 EOCD locator record.
	locator64Len = 20
	// eocd64Len is the size of the ZIP64 EOCD record without extensible data.
	eocd64Len = 56
	// eocd64Size is the value the ZIP64 EOCD "size of record" field must hold
	// when no extensible data area follows.
	eocd64Size = eocd64Len - 12

	// maxEOCDScan bounds the backward scan: a maximum-length comment plus the
	// EOCD itself plus the optional ZIP64 locator in front of it.
	maxEOCDScan = eocdLen + math.MaxUint16 + locator64Len
)

// directory is the location and span of the central directory as declared by
// the EOCD record, after any ZIP64 overrides.
type directory struct {
	count   uint64
	size    int64
	offset  int64
	comment []byte
}

// findDirectory scans the tail of src backwards for the EOCD record, follows
// the ZIP64 locator when the EOCD carries sentinel values, and validates that
// the declared central directory lies within the source.
func findDirectory(ctx context.Context, src Source, total int64) (*directory, error) {
	if total < eocdLen {
		return nil, ErrNoEOCD
	}

	scanLen := min(total, int64(maxEOCDScan))
	tail, err := src.ReadAt(ctx, total-scanLen, scanLen)
	if err != nil {
		return nil, fmt.Errorf("read end of source error: %w", err)
	}

	i := bytes.LastIndex(tail, eocdSigBytes)
	if i < 0 {
		return nil, ErrNoEOCD
	}

	c := newCursor(tail[i:])
	if err = c.match(eocdSigBytes); err != nil {
		return nil, err
	}
	if err = c.matchUint16(0, "disk number"); err != nil {
		return nil, err
	}
	if err = c.matchUint16(0, "central directory disk number"); err != nil {
		return nil, err
	}

	countOnDisk, err := c.uint16()
	if err != nil {
		return nil, err
	}
	count, err := c.uint16()
	if err != nil {
		return nil, err
	}
	if count != countOnDisk {
		return nil, fmt.Errorf("%w: %d entries on this disk, %d in total", ErrMultiDisk, countOnDisk, count)
	}

	size, err := c.uint32()
	if err != nil {
		return nil, err
	}
	offset, err := c.uint32()
	if err != nil {
		return nil, err
	}
	commentLen, err := c.uint16()
	if err != nil {
		return nil, err
	}
	comment, err := c.read(int(commentLen))
	if err != nil {
		return nil, fmt.Errorf("read end of central directory comment: %w", err)
	}
	if !c.atEnd() {
		return nil, fmt.Errorf("%w: %d bytes after end of central directory comment", ErrTrailingData, len(c.rest()))
	}

	d := &directory{
		count:   uint64(count),
		size:    int64(size),
		offset:  int64(offset),
		comment: comment,
	}

	if count == math.MaxUint16 || size == math.MaxUint32 || offset == math.MaxUint32 {
		if err = readZip64Directory(ctx, src, tail, i, d); err != nil {
			return nil, err
		}
	}

	if d.size > total-d.offset || d.offset < 0 {
		return nil, fmt.Errorf("%w: central directory [%d, %d) with source size %d", ErrOutOfBounds, d.offset, d.offset+d.size, total)
	}
	return d, nil
}

// readZip64Directory parses the ZIP64 locator that must sit immediately
// before the EOCD record at tail[eocdPos:], reads the 56-byte ZIP64 EOCD
// record it points at, and overrides the 32-bit directory values in d.
func readZip64Directory(ctx context.Context, src Source, tail []byte, eocdPos int, d *directory) error {
	if eocdPos < locator64Len {
		return fmt.Errorf("%w: no room before end of central directory record", ErrNoZip64Locator)
	}

	loc := tail[eocdPos-locator64Len : eocdPos]
	if !bytes.HasPrefix(loc, locator64SigBytes) {
		return fmt.Errorf("%w: no locator signature before end of central directory record", ErrNoZip64Locator)
	}

	c := newCursor(loc[4:])
	if err := c.matchUint32(0, "zip64 end of central directory disk number"); err != nil {
		return err
	}
	eocd64Offset, err := c.int64()
	if err != nil {
		return err
	}
	if err = c.matchUint32(1, "total disk count"); err != nil {
		return err
	}

	rec, err := src.ReadAt(ctx, eocd64Offset, eocd64Len)
	if err != nil {
		return fmt.Errorf("read zip64 end of central directory error: %w", err)
	}

	c = newCursor(rec)
	if err = c.match(eocd64SigBytes); err != nil {
		return err
	}
	recSize, err := c.uint64()
	if err != nil {
		return err
	}
	if recSize != eocd64Size {
		return fmt.Errorf("%w: zip64 extensible data area (record size %d, expected %d)", ErrUnsupported, recSize, eocd64Size)
	}
	if err = c.skip(4); err != nil { // creator and reader versions
		return err
	}
	if err = c.matchUint32(0, "disk number"); err != nil {
		return err
	}
	if err = c.matchUint32(0, "central directory disk number"); err != nil {
		return err
	}

	countOnDisk, err := c.int64()
	if err != nil {
		return err
	}
	count, err := c.int64()
	if err != nil {
		return err
	}
	if count != countOnDisk {
		return fmt.Errorf("%w: %d entries on this disk, %d in total", ErrMultiDisk, countOnDisk, count)
	}

	size, err := c.int64()
	if err != nil {
		return err
	}
	offset, err := c.int64()
	if err != nil {
		return err
	}

	d.count, d.size, d.offset = uint64(count), size, offset
	return nil
}
