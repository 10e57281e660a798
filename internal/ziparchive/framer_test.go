package ziparchive

import (
	"context"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSink just appends everything it's given, so the tee's output can be
// inspected as one contiguous byte slice.
type fakeSink struct {
	buf []byte
}

func (f *fakeSink) Append(ctx context.Context, p []byte) error {
	f.buf = append(f.buf, p...)
	return nil
}

type fakeHasher struct {
	fed []byte
}

func (f *fakeHasher) Feed(p []byte) {
	f.fed = append(f.fed, p...)
}

// TestWorkedExampleLayout reproduces the two-file archive worked example:
// a.txt containing "hi" and b.bin containing the three bytes 0x00 0x01 0x02,
// and checks the resulting archive length is exactly 223 bytes.
func TestWorkedExampleLayout(t *testing.T) {
	sink := &fakeSink{}
	hasher := &fakeHasher{}
	tee := NewTee(sink, hasher)
	ctx := context.Background()

	files := []struct {
		name string
		body []byte
	}{
		{"a.txt", []byte("hi")},
		{"b.bin", []byte{0x00, 0x01, 0x02}},
	}

	var directory []FileEntry
	for _, f := range files {
		offset := tee.Offset()
		require.NoError(t, tee.Emit(ctx, LocalFileHeader(f.name)))
		require.NoError(t, tee.Emit(ctx, f.body))

		crc := crc32.ChecksumIEEE(f.body)
		require.NoError(t, tee.Emit(ctx, DataDescriptor(crc, uint32(len(f.body)))))

		directory = append(directory, FileEntry{
			Name:              f.name,
			CRC32:             crc,
			Size:              uint32(len(f.body)),
			LocalHeaderOffset: uint32(offset),
		})
	}

	cdOffset := tee.Offset()
	require.Equal(t, int64(99), cdOffset, "data region (2 headers + bodies + descriptors) should be 99 bytes")

	var cd []byte
	for _, e := range directory {
		cd = append(cd, CentralDirectoryEntry(e)...)
	}
	require.Len(t, cd, 102)

	eocd := EndOfCentralDirectory(uint16(len(directory)), uint32(len(cd)), uint32(cdOffset))
	require.Len(t, eocd, 22)

	archiveLength := int(cdOffset) + len(cd) + len(eocd)
	require.Equal(t, 223, archiveLength)
}

func TestLocalFileHeaderPlaceholdersAreZero(t *testing.T) {
	h := LocalFileHeader("a.txt")
	require.Len(t, h, 35)
	require.Equal(t, []byte{0, 0, 0, 0}, h[14:18], "crc32 placeholder")
	require.Equal(t, []byte{0, 0, 0, 0}, h[18:22], "compressed size placeholder")
	require.Equal(t, []byte{0, 0, 0, 0}, h[22:26], "uncompressed size placeholder")
	require.Equal(t, uint16(0x0008), uint16(h[6])|uint16(h[7])<<8, "data descriptor bit must be set")
}

func TestDataDescriptorHasNoSignature(t *testing.T) {
	d := DataDescriptor(0xdeadbeef, 7)
	require.Len(t, d, 12)
	require.NotEqual(t, []byte{0x50, 0x4b, 0x07, 0x08}, d[0:4], "descriptor must not begin with the optional signature")
	require.Equal(t, uint32(0xdeadbeef), binaryLittleEndianUint32(d[0:4]), "first word must be the CRC, not a signature")
}

func binaryLittleEndianUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func TestEndOfCentralDirectoryEntryCounts(t *testing.T) {
	eocd := EndOfCentralDirectory(5, 500, 1000)
	require.Len(t, eocd, 22)
	require.Equal(t, uint16(5), uint16(eocd[8])|uint16(eocd[9])<<8)
	require.Equal(t, uint16(5), uint16(eocd[10])|uint16(eocd[11])<<8)
}
