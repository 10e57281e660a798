package torrentfile

import (
	"bytes"
	"crypto/sha1"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAndValidate(t *testing.T) {
	pieces := make([]byte, 2*sha1.Size)

	mi, err := Build("udp://tracker.example/announce", "archiver", 1700000000, 20, 16, "repo.zip", pieces, "https://cdn.example/repo.zip")
	require.NoError(t, err)
	require.NoError(t, mi.Validate())
}

func TestValidateRejectsPieceCountMismatch(t *testing.T) {
	pieces := make([]byte, 1*sha1.Size) // should be ceil(20/16) = 2

	mi, err := Build("udp://tracker.example/announce", "archiver", 0, 20, 16, "repo.zip", pieces, "https://cdn.example/repo.zip")
	require.Error(t, err)
	require.Nil(t, mi)
}

func TestValidateRejectsURLNotEndingInName(t *testing.T) {
	pieces := make([]byte, 2*sha1.Size)

	mi, err := Build("udp://tracker.example/announce", "archiver", 0, 20, 16, "repo.zip", pieces, "https://cdn.example/other.zip")
	require.Error(t, err)
	require.Nil(t, mi)
}

func TestEncodeKeyOrder(t *testing.T) {
	pieces := make([]byte, sha1.Size)
	mi, err := Build("udp://tracker.example/announce", "archiver", 123, 10, 16, "repo.zip", pieces, "https://cdn.example/repo.zip")
	require.NoError(t, err)

	encoded, err := mi.Encode()
	require.NoError(t, err)

	announceIdx := indexOf(t, encoded, "announce")
	createdByIdx := indexOf(t, encoded, "created by")
	creationDateIdx := indexOf(t, encoded, "creation date")
	infoIdx := indexOf(t, encoded, "info")
	urlListIdx := indexOf(t, encoded, "url-list")

	require.Less(t, announceIdx, createdByIdx)
	require.Less(t, createdByIdx, creationDateIdx)
	require.Less(t, creationDateIdx, infoIdx)
	require.Less(t, infoIdx, urlListIdx)

	lengthIdx := indexOf(t, encoded, "length")
	nameIdx := indexOf(t, encoded, "name")
	pieceLengthIdx := indexOf(t, encoded, "piece length")
	piecesIdx := indexOf(t, encoded, "pieces")

	require.Less(t, lengthIdx, nameIdx)
	require.Less(t, nameIdx, pieceLengthIdx)
	require.Less(t, pieceLengthIdx, piecesIdx)
}

func TestInfoHashIsDeterministic(t *testing.T) {
	pieces := make([]byte, sha1.Size)
	mi, err := Build("udp://tracker.example/announce", "archiver", 0, 10, 16, "repo.zip", pieces, "https://cdn.example/repo.zip")
	require.NoError(t, err)

	h1, err := mi.InfoHash()
	require.NoError(t, err)
	h2, err := mi.InfoHash()
	require.NoError(t, err)

	require.Equal(t, h1, h2)
	require.Len(t, h1, 40) // hex-encoded SHA-1
}

func indexOf(t *testing.T, haystack []byte, needle string) int {
	t.Helper()
	key := strconv.Itoa(len(needle)) + ":" + needle
	idx := bytes.Index(haystack, []byte(key))
	require.GreaterOrEqual(t, idx, 0, "expected to find bencoded key %q", needle)
	return idx
}
