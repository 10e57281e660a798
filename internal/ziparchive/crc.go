package ziparchive

import "hash/crc32"

// CRC32Accumulator is a pure incremental IEEE CRC-32 computation over a
// streamed input (spec §4.2). It produces the same result regardless of
// how the byte stream is chunked, since it is just the stdlib crc32 table
// threaded across calls.
type CRC32Accumulator struct {
	sum uint32
}

// Write folds p into the running checksum. It never returns an error.
func (c *CRC32Accumulator) Write(p []byte) (int, error) {
	c.sum = crc32.Update(c.sum, crc32.IEEETable, p)
	return len(p), nil
}

// Sum32 returns the IEEE CRC-32 of all bytes written so far.
func (c *CRC32Accumulator) Sum32() uint32 {
	return c.sum
}

// Reset clears the accumulator for reuse with the next file.
func (c *CRC32Accumulator) Reset() {
	c.sum = 0
}
