package torrentfile

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/anacrolix/torrent/bencode"
)

// Info is the torrent metainfo "info" sub-dictionary (spec §6). Field
// declaration order matches the bencode-required lexicographic key sort
// ("length" < "name" < "piece length" < "pieces"), so bencode.Marshal emits
// a conformant dictionary without any extra sorting step.
type Info struct {
	Length      int64  `bencode:"length"`
	Name        string `bencode:"name"`
	PieceLength int64  `bencode:"piece length"`
	Pieces      []byte `bencode:"pieces"`
}

// MetaInfo is the top-level bencoded dictionary (spec §6). Field order
// again matches the required key sort: "announce" < "created by" <
// "creation date" < "info" < "url-list".
type MetaInfo struct {
	Announce     string   `bencode:"announce"`
	CreatedBy    string   `bencode:"created by"`
	CreationDate int64    `bencode:"creation date"`
	Info         Info     `bencode:"info"`
	URLList      []string `bencode:"url-list"`
}

// Build assembles a MetaInfo from the results of streaming the archive.
// pieces comes from PieceHasher.Finalize; length is the total
// archive size; webSeedURL must end with name (spec §6 invariant).
func Build(announce, createdBy string, creationDate int64, length, pieceLength int64, name string, pieces []byte, webSeedURL string) (*MetaInfo, error) {
	mi := &MetaInfo{
		Announce:     announce,
		CreatedBy:    createdBy,
		CreationDate: creationDate,
		Info: Info{
			Length:      length,
			Name:        name,
			PieceLength: pieceLength,
			Pieces:      pieces,
		},
		URLList: []string{webSeedURL},
	}
	if err := mi.Validate(); err != nil {
		return nil, err
	}
	return mi, nil
}

// Validate checks the invariants spec §6 requires before emission.
func (mi *MetaInfo) Validate() error {
	expectedPieces := (mi.Info.Length + mi.Info.PieceLength - 1) / mi.Info.PieceLength
	actualPieces := int64(len(mi.Info.Pieces) / sha1.Size)
	if actualPieces != expectedPieces {
		return fmt.Errorf("piece count mismatch: got %d, expected ceil(%d/%d)=%d",
			actualPieces, mi.Info.Length, mi.Info.PieceLength, expectedPieces)
	}
	if len(mi.Info.Pieces) != int(actualPieces)*sha1.Size {
		return fmt.Errorf("pieces length %d is not a multiple of %d", len(mi.Info.Pieces), sha1.Size)
	}
	if len(mi.URLList) == 0 || !strings.HasSuffix(mi.URLList[0], mi.Info.Name) {
		return fmt.Errorf("url-list[0] must end with info.name %q", mi.Info.Name)
	}
	return nil
}

// Encode bencodes the metainfo dictionary.
func (mi *MetaInfo) Encode() ([]byte, error) {
	return bencode.Marshal(mi)
}

// InfoHash returns the hex-encoded SHA-1 of the bencoded info dictionary,
// the torrent's info-hash, logged on completion the way the teacher logs
// mi.HashInfoBytes().HexString() in internal/torrent/generator.go.
func (mi *MetaInfo) InfoHash() (string, error) {
	infoBytes, err := bencode.Marshal(mi.Info)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(infoBytes)
	return hex.EncodeToString(sum[:]), nil
}
