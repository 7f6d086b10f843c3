package netzip

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"
)

// leWriter appends little-endian fields to a buffer. Fixture archives are
// assembled byte-by-byte so tests control every field, including malformed
// ones no real writer would produce.
type leWriter struct {
	buf *bytes.Buffer
}

func (w leWriter) u16(v uint16) {
	_ = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w leWriter) u32(v uint32) {
	_ = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w leWriter) raw(b []byte) {
	w.buf.Write(b)
}

// fixtureEntry describes one stored entry for buildArchive. The zero value of
// every override field produces a well-formed record.
type fixtureEntry struct {
	name    string
	payload []byte
	comment string

	flags  uint16
	method uint16
	disk   uint16

	// pointer overrides replace the value recorded in the central directory
	// without touching the written local header or payload.
	crc      *uint32
	csize    *uint32
	usize    *uint32
	cdOffset *uint32
	extra    []byte
}

func u32p(v uint32) *uint32 { return &v }

// buildArchive writes the local file entries, the central directory, and the
// EOCD record for the given entries.
func buildArchive(entries []fixtureEntry, comment string) []byte {
	buf := &bytes.Buffer{}
	w := leWriter{buf}

	offsets := make([]uint32, len(entries))
	for i, e := range entries {
		offsets[i] = uint32(buf.Len())
		w.u32(lfhSig)
		w.u16(20) // reader version
		w.u16(e.flags)
		w.u16(e.method)
		w.u16(0) // modification time
		w.u16(0) // modification date
		w.u32(crc32.ChecksumIEEE(e.payload))
		w.u32(uint32(len(e.payload)))
		w.u32(uint32(len(e.payload)))
		w.u16(uint16(len(e.name)))
		w.u16(0) // extra length
		w.raw([]byte(e.name))
		w.raw(e.payload)
	}

	cdOffset := uint32(buf.Len())
	for i, e := range entries {
		crc := crc32.ChecksumIEEE(e.payload)
		if e.crc != nil {
			crc = *e.crc
		}
		csize := uint32(len(e.payload))
		if e.csize != nil {
			csize = *e.csize
		}
		usize := uint32(len(e.payload))
		if e.usize != nil {
			usize = *e.usize
		}
		offset := offsets[i]
		if e.cdOffset != nil {
			offset = *e.cdOffset
		}

		w.u32(cdfhSig)
		w.u16(20) // creator version
		w.u16(20) // reader version
		w.u16(e.flags)
		w.u16(e.method)
		w.u16(0) // modification time
		w.u16(0) // modification date
		w.u32(crc)
		w.u32(csize)
		w.u32(usize)
		w.u16(uint16(len(e.name)))
		w.u16(uint16(len(e.extra)))
		w.u16(uint16(len(e.comment)))
		w.u16(e.disk)
		w.u16(0) // internal attributes
		w.u32(0) // external attributes
		w.u32(offset)
		w.raw([]byte(e.name))
		w.raw(e.extra)
		w.raw([]byte(e.comment))
	}

	cdSize := uint32(buf.Len()) - cdOffset
	w.u32(eocdSig)
	w.u16(0) // disk number
	w.u16(0) // central directory disk number
	w.u16(uint16(len(entries)))
	w.u16(uint16(len(entries)))
	w.u32(cdSize)
	w.u32(cdOffset)
	w.u16(uint16(len(comment)))
	w.raw([]byte(comment))

	return buf.Bytes()
}

// zip64Extra assembles a ZIP64 extended-information extra field with the
// given sub-record size and values.
func zip64Extra(size uint16, values ...uint64) []byte {
	buf := &bytes.Buffer{}
	w := leWriter{buf}
	w.u16(zip64ExtraTag)
	w.u16(size)
	for _, v := range values {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

var (
	helloPayload = []byte("Hello World!")
	drinkPayload = []byte{0xca, 0xfe, 0xba, 0xbe}
)

// buildSmallZip reproduces the two-entry fixture with archive/zip. CreateRaw
// writes stored entries without the data-descriptor flag, which is the shape
// this package accepts.
func buildSmallZip(t testing.TB) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	require.NoError(t, zw.SetComment("smol comment"))

	add := func(name string, payload []byte, comment string) {
		fw, err := zw.CreateRaw(&zip.FileHeader{
			Name:               name,
			Comment:            comment,
			Method:             zip.Store,
			CRC32:              crc32.ChecksumIEEE(payload),
			CompressedSize64:   uint64(len(payload)),
			UncompressedSize64: uint64(len(payload)),
		})
		require.NoErrorf(t, err, "CreateRaw(%s) error = %v", name, err)

		_, err = fw.Write(payload)
		require.NoErrorf(t, err, "Write(%s) error = %v", name, err)
	}

	add("hello.txt", helloPayload, "optimistic comment")
	add("nested/drink.bin", drinkPayload, "energetic comment")

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildZip64 writes 65536 stored entries drink-0000.txt through
// drink-ffff.txt, forcing archive/zip to emit a ZIP64 EOCD record.
func buildZip64(t testing.TB) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	for i := 0; i < 0x10000; i++ {
		fw, err := zw.CreateRaw(&zip.FileHeader{
			Name:               fmt.Sprintf("drink-%04x.txt", i),
			Method:             zip.Store,
			CRC32:              crc32.ChecksumIEEE(drinkPayload),
			CompressedSize64:   uint64(len(drinkPayload)),
			UncompressedSize64: uint64(len(drinkPayload)),
		})
		require.NoError(t, err)

		_, err = fw.Write(drinkPayload)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}
