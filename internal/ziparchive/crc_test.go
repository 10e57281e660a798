package ziparchive

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRC32AccumulatorMatchesStdlibAcrossChunking(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	var acc CRC32Accumulator
	for _, chunk := range [][]byte{data[:1], data[1:17], data[17:]} {
		acc.Write(chunk)
	}

	require.Equal(t, crc32.ChecksumIEEE(data), acc.Sum32())
}

func TestCRC32AccumulatorReset(t *testing.T) {
	var acc CRC32Accumulator
	acc.Write([]byte("hi"))
	require.NotZero(t, acc.Sum32())

	acc.Reset()
	require.Equal(t, uint32(0), acc.Sum32())
}
