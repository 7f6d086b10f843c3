package netzip

import "errors"

var (
	// ErrOutOfBounds is returned when a read or seek goes past the end of its
	// window or source, or when a declared offset/size references bytes outside
	// the source.
	ErrOutOfBounds = errors.New("netzip: read out of bounds")

	// ErrSignature is returned when a record does not start with its expected
	// 4-byte signature.
	ErrSignature = errors.New("netzip: mismatched signature")

	// ErrFieldMismatch is returned when a field that must hold a fixed constant
	// holds something else.
	ErrFieldMismatch = errors.New("netzip: mismatched field")

	// ErrTrailingData is returned when unexpected bytes remain after a record
	// was fully parsed.
	ErrTrailingData = errors.New("netzip: trailing data")

	// ErrNoEOCD is returned if no EOCD signature was found; most likely the
	// source is not a ZIP file.
	ErrNoEOCD = errors.New("netzip: end of central directory not found; most likely not a ZIP file")

	// ErrNoZip64Locator is returned when the EOCD record carries ZIP64 sentinel
	// values but no valid ZIP64 locator precedes it.
	ErrNoZip64Locator = errors.New("netzip: zip64 end of central directory locator not found")

	// ErrZip64Extra is returned when a ZIP64 extra sub-record is missing or
	// malformed.
	ErrZip64Extra = errors.New("netzip: malformed zip64 extra field")

	// ErrMultiDisk is returned when the archive spans more than one disk.
	ErrMultiDisk = errors.New("netzip: multi-disk archives not supported")

	// ErrEncryption is returned when an entry is encrypted.
	ErrEncryption = errors.New("netzip: encrypted entries not supported")

	// ErrCompression is returned when an entry uses any method other than
	// stored, or when its compressed and uncompressed sizes disagree.
	ErrCompression = errors.New("netzip: compressed entries not supported")

	// ErrUnsupported is returned when the archive uses a recognized feature
	// this package does not handle, such as data descriptors, UTF-8-flagged
	// names, or a ZIP64 extensible data area.
	ErrUnsupported = errors.New("netzip: unsupported feature")

	// ErrDuplicateName is returned when two central directory entries share a
	// name.
	ErrDuplicateName = errors.New("netzip: duplicate entry name")

	// ErrNotFound is returned by [Archive.Get] when no entry has the requested
	// name.
	ErrNotFound = errors.New("netzip: entry not found")

	// ErrChecksum is returned when an entry's payload does not match its
	// recorded CRC-32.
	ErrChecksum = errors.New("netzip: checksum mismatch")

	// ErrOverflow is returned when an 8-byte field does not fit in an int64.
	ErrOverflow = errors.New("netzip: integer overflow")
)
