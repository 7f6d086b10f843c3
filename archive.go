// Package netzip reads ZIP archives over randomly-addressable byte sources.
//
// An [Archive] is built once by locating and decoding the central directory
// (including the ZIP64 extension) with a bounded number of ranged reads, then
// serves checksum-verified payloads on demand. Only stored (uncompressed)
// entries are supported; compressed, encrypted, multi-disk, and
// data-descriptor archives are rejected wholesale rather than partially
// processed.
package netzip

import (
	"context"
	"fmt"
	"hash/crc32"
	"iter"
	"maps"
	"math"
)

const (
	// lfhLen is the fixed size of a local file header.
	lfhLen = 30

	// getWindowSlack is the extra length read past an entry's local header
	// offset so the variable-length header and the payload usually arrive in
	// one ranged read: the fixed header plus a maximum-length name field.
	getWindowSlack = lfhLen + math.MaxUint16
)

// Archive is an immutable index over one ZIP archive. Once constructed it is
// never mutated, so concurrent [Archive.Get] calls are safe as long as the
// underlying Source tolerates concurrent reads.
type Archive struct {
	src     Source
	size    int64
	entries map[string]Entry
	comment []byte
}

// From locates and decodes the central directory of the archive in src and
// returns the constructed index. Construction is atomic: any structural,
// bounds, or unsupported-feature error yields no Archive at all.
//
// From issues a bounded number of sequential reads (the end-of-source scan,
// the optional ZIP64 record, the full central directory) and never retries;
// any Source failure propagates immediately.
func From(ctx context.Context, src Source) (*Archive, error) {
	total, err := src.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("determine source size error: %w", err)
	}

	d, err := findDirectory(ctx, src, total)
	if err != nil {
		return nil, err
	}

	var buf []byte
	if d.size > 0 {
		if buf, err = src.ReadAt(ctx, d.offset, d.size); err != nil {
			return nil, fmt.Errorf("read central directory error: %w", err)
		}
	}

	entries, err := decodeDirectory(buf, d.count, total)
	if err != nil {
		return nil, err
	}

	return &Archive{
		src:     src,
		size:    total,
		entries: entries,
		comment: d.comment,
	}, nil
}

// Len returns the number of indexed entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Comment returns the raw archive-level comment bytes.
func (a *Archive) Comment() []byte {
	return a.comment
}

// Names iterates over every entry name exactly once, in no particular order.
func (a *Archive) Names() iter.Seq[string] {
	return maps.Keys(a.entries)
}

// Entry returns the index entry for name.
func (a *Archive) Entry(name string) (Entry, bool) {
	e, ok := a.entries[name]
	return e, ok
}

// Get reads, verifies, and returns the payload of the named entry.
//
// The local file header and the payload are fetched in a single ranged read
// where possible. The payload checksum must match the central directory's
// recorded CRC-32 or Get fails with ErrChecksum. A failed Get does not
// invalidate the Archive; Get is stateless and idempotent per call.
func (a *Archive) Get(ctx context.Context, name string) ([]byte, error) {
	e, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	n := min(e.Size+getWindowSlack, a.size-e.Offset)
	window, err := a.src.ReadAt(ctx, e.Offset, n)
	if err != nil {
		return nil, fmt.Errorf("read local file entry error: %w", err)
	}

	c := newCursor(window)
	if err = c.match(lfhSigBytes); err != nil {
		return nil, err
	}
	// version, flags, method, modification time, crc, and sizes: the central
	// directory already vetted these.
	if err = c.skip(22); err != nil {
		return nil, err
	}
	nameLen, err := c.uint16()
	if err != nil {
		return nil, err
	}
	extraLen, err := c.uint16()
	if err != nil {
		return nil, err
	}
	if err = c.skip(int(nameLen) + int(extraLen)); err != nil {
		return nil, err
	}

	payload, err := c.read(int(e.Size))
	if err != nil {
		return nil, fmt.Errorf("read payload of %q: %w", name, err)
	}

	if got := crc32.ChecksumIEEE(payload); got != e.CRC32 {
		return nil, fmt.Errorf("%w: entry %q: got 0x%08x, expected 0x%08x", ErrChecksum, name, got, e.CRC32)
	}
	return payload, nil
}
