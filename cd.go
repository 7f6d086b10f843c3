package netzip

import (
	"fmt"
	"math"
)

const (
	// methodStored is the only compression method this package reads.
	methodStored = 0

	// zip64ExtraTag identifies the ZIP64 extended-information extra field.
	zip64ExtraTag = 0x0001
)

// flagChecks lists the general-purpose flag bits that make an entry
// unreadable for this package. UTF-8-flagged names are rejected rather than
// decoded: names stay opaque byte sequences.
var flagChecks = []struct {
	mask uint16
	err  error
	what string
}{
	{0x0001, ErrEncryption, "bit 0 (encrypted)"},
	{0x0008, ErrUnsupported, "bit 3 (data descriptor)"},
	{0x0020, ErrUnsupported, "bit 5 (compressed patched data)"},
	{0x0040, ErrEncryption, "bit 6 (strong encryption)"},
	{0x0800, ErrUnsupported, "bit 11 (utf-8 name)"},
	{0x2000, ErrEncryption, "bit 13 (masked local headers)"},
}

// decodeDirectory decodes exactly count central directory records from buf
// and returns the entry index keyed by name. total is the source length used
// for the per-entry bounds check.
func decodeDirectory(buf []byte, count uint64, total int64) (map[string]Entry, error) {
	// count is attacker-controlled; cap the initial allocation only.
	capHint := count
	if capHint > 1024*1024 {
		capHint = 1024
	}
	entries := make(map[string]Entry, capHint)

	c := newCursor(buf)
	for i := uint64(0); i < count; i++ {
		e, err := decodeEntry(c, total)
		if err != nil {
			return nil, fmt.Errorf("central directory entry %d: %w", i, err)
		}
		if _, ok := entries[e.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		entries[e.Name] = e
	}

	if !c.atEnd() {
		return nil, fmt.Errorf("%w: %d bytes after last central directory entry", ErrTrailingData, len(c.rest()))
	}
	return entries, nil
}

// decodeEntry decodes one central directory file header at the cursor.
func decodeEntry(c *cursor, total int64) (e Entry, err error) {
	if err = c.match(cdfhSigBytes); err != nil {
		return e, err
	}
	if err = c.skip(4); err != nil { // creator and reader versions
		return e, err
	}

	flags, err := c.uint16()
	if err != nil {
		return e, err
	}
	for _, fc := range flagChecks {
		if flags&fc.mask != 0 {
			return e, fmt.Errorf("%w: flag %s", fc.err, fc.what)
		}
	}

	method, err := c.uint16()
	if err != nil {
		return e, err
	}
	if method != methodStored {
		return e, fmt.Errorf("%w: method %d", ErrCompression, method)
	}

	if err = c.skip(4); err != nil { // modification time and date
		return e, err
	}

	crc, err := c.uint32()
	if err != nil {
		return e, err
	}
	csize, err := c.uint32()
	if err != nil {
		return e, err
	}
	usize, err := c.uint32()
	if err != nil {
		return e, err
	}
	if csize != usize {
		return e, fmt.Errorf("%w: compressed size %d != uncompressed size %d", ErrCompression, csize, usize)
	}

	nameLen, err := c.uint16()
	if err != nil {
		return e, err
	}
	extraLen, err := c.uint16()
	if err != nil {
		return e, err
	}
	commentLen, err := c.uint16()
	if err != nil {
		return e, err
	}

	disk, err := c.uint16()
	if err != nil {
		return e, err
	}
	if disk != 0 {
		return e, fmt.Errorf("%w: entry starts on disk %d", ErrMultiDisk, disk)
	}

	if err = c.skip(6); err != nil { // internal and external attributes
		return e, err
	}
	offset, err := c.uint32()
	if err != nil {
		return e, err
	}

	name, err := c.read(int(nameLen))
	if err != nil {
		return e, err
	}
	extra, err := c.read(int(extraLen))
	if err != nil {
		return e, err
	}
	comment, err := c.read(int(commentLen))
	if err != nil {
		return e, err
	}

	e = Entry{
		Name:    string(name),
		Offset:  int64(offset),
		Size:    int64(usize),
		CRC32:   crc,
		Comment: append([]byte(nil), comment...),
	}

	if usize == math.MaxUint32 || offset == math.MaxUint32 {
		if err = applyZip64Extra(&e, extra); err != nil {
			return e, err
		}
	}

	if e.Size > total-e.Offset || e.Offset < 0 {
		return e, fmt.Errorf("%w: entry %q [%d, %d) with source size %d", ErrOutOfBounds, e.Name, e.Offset, e.Offset+e.Size, total)
	}
	return e, nil
}

// applyZip64Extra finds the ZIP64 sub-record in the extra field and overrides
// the 32-bit size and offset values in e. The sub-record always starts with
// the true uncompressed size; the compressed size, local header offset, and
// disk number follow depending on the declared sub-record length.
func applyZip64Extra(e *Entry, extra []byte) error {
	c := newCursor(extra)
	for !c.atEnd() {
		tag, err := c.uint16()
		if err != nil {
			return fmt.Errorf("extra field: %w", err)
		}
		size, err := c.uint16()
		if err != nil {
			return fmt.Errorf("extra field: %w", err)
		}
		data, err := c.read(int(size))
		if err != nil {
			return fmt.Errorf("extra field: %w", err)
		}
		if tag != zip64ExtraTag {
			continue
		}

		switch size {
		case 8, 16, 24, 28:
		default:
			return fmt.Errorf("%w: sub-record size %d", ErrZip64Extra, size)
		}

		ec := newCursor(data)
		if e.Size, err = ec.int64(); err != nil {
			return err
		}
		if size >= 16 {
			csize, err := ec.int64()
			if err != nil {
				return err
			}
			if csize != e.Size {
				return fmt.Errorf("%w: compressed size %d != uncompressed size %d", ErrCompression, csize, e.Size)
			}
		}
		if size >= 24 {
			if e.Offset, err = ec.int64(); err != nil {
				return err
			}
		}
		if size >= 28 {
			disk, err := ec.uint32()
			if err != nil {
				return err
			}
			if disk != 0 {
				return fmt.Errorf("%w: entry starts on disk %d", ErrMultiDisk, disk)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: no zip64 sub-record in extra field", ErrZip64Extra)
}
