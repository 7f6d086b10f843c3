package netzip

// Entry is one indexed member of an [Archive]. It is immutable once the
// Archive is constructed.
type Entry struct {
	// Name is the raw entry name. Names are opaque byte sequences; this
	// package performs no encoding detection or decoding.
	Name string

	// Offset is the absolute byte position of the entry's local file header
	// in the source.
	Offset int64

	// Size is the stored payload length. Entries are always stored, so the
	// compressed and uncompressed lengths are the same.
	Size int64

	// CRC32 is the expected checksum of the payload.
	CRC32 uint32

	// Comment is the raw per-entry comment from the central directory.
	Comment []byte
}
