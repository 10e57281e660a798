// Package ziparchive synthesizes the ZIP structural records described in
// spec §4.4 — local file header, data descriptor, central directory entry,
// end-of-central-directory — and the single tee writer (spec §2) that
// every archive byte flows through on its way to the multipart sink and
// the piece hasher.
//
// Hand-rolled rather than built on archive/zip: the archive is produced in
// a single pass with sizes and CRCs only known after the body has streamed
// (the "data descriptor" flag, spec §4.4), and every byte must be forked to
// two sinks simultaneously, which archive/zip's single io.Writer model does
// not support without an intermediate copy. Grounded in structural shape on
// nabbar-golib's archive/archive/zip/writer.go and martin-sucha-zipserve's
// writer.go, both of which hand-encode or wrap ZIP records directly.
package ziparchive

import "encoding/binary"

const (
	localHeaderSignature = 0x04034b50
	centralDirSignature  = 0x02014b50
	eocdSignature        = 0x06054b50

	versionNeeded  = 20
	versionMadeBy  = 20
	generalFlags   = 0x0008 // bit 3: data descriptor follows the file body
	methodStore    = 0      // no compression (spec Non-goals)
	localHeaderLen = 30
	centralDirLen  = 46
	eocdLen        = 22
	descriptorLen  = 12
)

// FileEntry is the per-file bookkeeping record of spec §3, built
// incrementally as a file streams through the pipeline and consumed once by
// the central directory assembler.
type FileEntry struct {
	Name              string
	CRC32             uint32
	Size              uint32 // uncompressed == compressed (stored method)
	LocalHeaderOffset uint32 // value of A when the local header began
}

// LocalFileHeader encodes the 30+len(name) byte local file header. CRC and
// sizes are placeholders (zero); the trailing data descriptor carries the
// real values (spec §4.4).
func LocalFileHeader(name string) []byte {
	nameBytes := []byte(name)
	buf := make([]byte, localHeaderLen+len(nameBytes))

	binary.LittleEndian.PutUint32(buf[0:4], localHeaderSignature)
	binary.LittleEndian.PutUint16(buf[4:6], versionNeeded)
	binary.LittleEndian.PutUint16(buf[6:8], generalFlags)
	binary.LittleEndian.PutUint16(buf[8:10], methodStore)
	binary.LittleEndian.PutUint16(buf[10:12], 0) // mod time
	binary.LittleEndian.PutUint16(buf[12:14], 0) // mod date
	binary.LittleEndian.PutUint32(buf[14:18], 0) // crc32 placeholder
	binary.LittleEndian.PutUint32(buf[18:22], 0) // compressed size placeholder
	binary.LittleEndian.PutUint32(buf[22:26], 0) // uncompressed size placeholder
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(nameBytes)))
	binary.LittleEndian.PutUint16(buf[28:30], 0) // extra field length
	copy(buf[30:], nameBytes)

	return buf
}

// DataDescriptor encodes the 12-byte trailer carrying the CRC and sizes
// that could not be known when the local header was written. Per spec §9
// Open Question 2, this implementation consistently omits the optional
// 0x08074b50 signature, both here and (necessarily) in the central
// directory, which has no data-descriptor concept at all.
func DataDescriptor(crc32, size uint32) []byte {
	buf := make([]byte, descriptorLen)
	binary.LittleEndian.PutUint32(buf[0:4], crc32)
	binary.LittleEndian.PutUint32(buf[4:8], size)
	binary.LittleEndian.PutUint32(buf[8:12], size)
	return buf
}

// CentralDirectoryEntry encodes the 46+len(name) byte directory record for
// one finalized file entry.
func CentralDirectoryEntry(e FileEntry) []byte {
	nameBytes := []byte(e.Name)
	buf := make([]byte, centralDirLen+len(nameBytes))

	binary.LittleEndian.PutUint32(buf[0:4], centralDirSignature)
	binary.LittleEndian.PutUint16(buf[4:6], versionMadeBy)
	binary.LittleEndian.PutUint16(buf[6:8], versionNeeded)
	binary.LittleEndian.PutUint16(buf[8:10], generalFlags)
	binary.LittleEndian.PutUint16(buf[10:12], methodStore)
	binary.LittleEndian.PutUint16(buf[12:14], 0) // mod time
	binary.LittleEndian.PutUint16(buf[14:16], 0) // mod date
	binary.LittleEndian.PutUint32(buf[16:20], e.CRC32)
	binary.LittleEndian.PutUint32(buf[20:24], e.Size)
	binary.LittleEndian.PutUint32(buf[24:28], e.Size)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(nameBytes)))
	binary.LittleEndian.PutUint16(buf[30:32], 0) // extra field length
	binary.LittleEndian.PutUint16(buf[32:34], 0) // comment length
	binary.LittleEndian.PutUint16(buf[34:36], 0) // disk number start
	binary.LittleEndian.PutUint16(buf[36:38], 0) // internal file attrs
	binary.LittleEndian.PutUint32(buf[38:42], 0) // external file attrs
	binary.LittleEndian.PutUint32(buf[42:46], e.LocalHeaderOffset)
	copy(buf[46:], nameBytes)

	return buf
}

// EndOfCentralDirectory encodes the 22-byte (no archive comment in this
// revision, per spec §4.4) EOCD record.
func EndOfCentralDirectory(entryCount uint16, cdSize, cdOffset uint32) []byte {
	buf := make([]byte, eocdLen)
	binary.LittleEndian.PutUint32(buf[0:4], eocdSignature)
	binary.LittleEndian.PutUint16(buf[4:6], 0) // disk
	binary.LittleEndian.PutUint16(buf[6:8], 0) // start disk
	binary.LittleEndian.PutUint16(buf[8:10], entryCount)
	binary.LittleEndian.PutUint16(buf[10:12], entryCount)
	binary.LittleEndian.PutUint32(buf[12:16], cdSize)
	binary.LittleEndian.PutUint32(buf[16:20], cdOffset)
	binary.LittleEndian.PutUint16(buf[20:22], 0) // comment length
	return buf
}
