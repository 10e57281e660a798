// Package archivepipeline implements the orchestrator of spec §4.6: the
// top-level state machine that walks a repository's file list, drives the
// registry client, the ZIP framer/tee, the piece hasher and the multipart
// sink, and finishes by producing the bencoded torrent. Grounded on the
// teacher's GenerateTorrent in internal/torrent/generator.go (collect files
// → pick a piece size → stream+hash → build MetaInfo → bencode-marshal →
// return), generalized from a local-disk directory walk with a
// Postgres-journaled checkpoint/resume flow to remote per-file streaming
// fetches with no resumability (spec Non-goals) — see DESIGN.md.
package archivepipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omnicloud/archiver/internal/objectstore"
	"github.com/omnicloud/archiver/internal/registry"
	"github.com/omnicloud/archiver/internal/torrentfile"
	"github.com/omnicloud/archiver/internal/ziparchive"
)

// Pipeline wires the registry client and object store into spec §4.6's
// state machine for one request at a time; a Pipeline value carries no
// per-request state (spec §9 "Global mutable state: None").
type Pipeline struct {
	Registry *registry.Client
	S3       objectstore.S3API

	Bucket          string
	S3PublicBaseURL string

	MinPartSize int64
	MaxPartSize int64
	PieceLength int64

	TrackerURL string
	CreatedBy  string

	// Now returns the current time; overridable in tests. Defaults to
	// time.Now when nil.
	Now func() time.Time
}

// Result summarizes a successful run (spec §6 response/object-store
// contract).
type Result struct {
	RequestID   string
	ArchiveKey  string
	TorrentKey  string
	ArchiveSize int64
	FileCount   int
	SkippedGet  int
	InfoHash    string
}

// Run executes the LIST → (HEADER → BODY → DESCRIPTOR)* → TAIL → TORRENT →
// DONE state machine of spec §4.6 for repo at rev. On any fatal error the
// multipart upload is aborted before the error is returned (spec §7).
func (p *Pipeline) Run(ctx context.Context, repo, rev string) (*Result, error) {
	requestID := uuid.New().String()
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, &BadRequest{Message: err.Error()}
	}

	log.Printf("[%s] archiving %s@%s", requestID, repo, rev)

	paths, err := p.Registry.List(ctx, repo, rev)
	if err != nil {
		return nil, &ListFailure{Cause: err}
	}
	if len(paths) == 0 {
		return nil, &EmptyRepository{}
	}

	archiveKey := fmt.Sprintf("%s/%s.zip", owner, name)
	torrentKey := fmt.Sprintf("%s/%s.torrent", owner, name)

	sink := objectstore.NewMultipartSink(p.S3, p.Bucket, archiveKey, p.MinPartSize, p.MaxPartSize)
	if err := sink.Create(ctx, "application/zip"); err != nil {
		return nil, &SinkFailure{Cause: err}
	}

	committed := false
	defer func() {
		if !committed {
			sink.Abort(ctx)
		}
	}()

	hasher := torrentfile.NewPieceHasher(int(p.PieceLength))
	tee := ziparchive.NewTee(sink, hasher)

	var directory []ziparchive.FileEntry
	skipped := 0

	for _, path := range paths {
		stream, err := p.Registry.Open(ctx, repo, rev, path)
		if err != nil {
			// Per spec §9 Open Question 1 (fixed): the header is never
			// emitted until the body is confirmed available, so a fetch
			// failure here leaves the archive untouched — no orphan
			// header, no directory entry, A unchanged.
			log.Printf("[%s] skipping %s: %v", requestID, path, err)
			skipped++
			continue
		}

		entry, err := streamFile(ctx, tee, path, stream)
		stream.Close()
		if err != nil {
			return nil, &SinkFailure{Cause: fmt.Errorf("streaming %s: %w", path, err)}
		}
		directory = append(directory, entry)
	}

	if len(directory) == 0 {
		return nil, &EmptyRepository{}
	}

	cdOffset := tee.Offset()
	var cd []byte
	for _, e := range directory {
		cd = append(cd, ziparchive.CentralDirectoryEntry(e)...)
	}
	eocd := ziparchive.EndOfCentralDirectory(uint16(len(directory)), uint32(len(cd)), uint32(cdOffset))
	tail := append(cd, eocd...)

	hasher.Feed(tail)
	if err := sink.FlushAndSeal(ctx, tail); err != nil {
		return nil, &SinkFailure{Cause: err}
	}
	committed = true

	archiveLength := cdOffset + int64(len(tail))
	pieces, _ := hasher.Finalize()

	infoName := name + ".zip"
	webSeedURL := strings.TrimRight(p.S3PublicBaseURL, "/") + "/" + archiveKey

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	mi, err := torrentfile.Build(p.TrackerURL, p.CreatedBy, now().Unix(), archiveLength, p.PieceLength, infoName, pieces, webSeedURL)
	if err != nil {
		return nil, &InvariantViolation{Cause: err}
	}

	torrentBytes, err := mi.Encode()
	if err != nil {
		return nil, &InvariantViolation{Cause: err}
	}

	if err := objectstore.PutObject(ctx, p.S3, p.Bucket, torrentKey, torrentBytes, "application/x-bittorrent"); err != nil {
		return nil, &SinkFailure{Cause: err}
	}

	infoHash, err := mi.InfoHash()
	if err != nil {
		return nil, &InvariantViolation{Cause: err}
	}

	log.Printf("[%s] done: %d files (%d skipped), %d bytes, info-hash %s", requestID, len(directory), skipped, archiveLength, infoHash)

	return &Result{
		RequestID:   requestID,
		ArchiveKey:  archiveKey,
		TorrentKey:  torrentKey,
		ArchiveSize: archiveLength,
		FileCount:   len(directory),
		SkippedGet:  skipped,
		InfoHash:    infoHash,
	}, nil
}

// streamFile executes the per-file subflow of spec §4.6 steps 1-6.
func streamFile(ctx context.Context, tee *ziparchive.Tee, path string, stream *registry.Stream) (ziparchive.FileEntry, error) {
	localHeaderOffset := tee.Offset()

	header := ziparchive.LocalFileHeader(path)
	if err := tee.Emit(ctx, header); err != nil {
		return ziparchive.FileEntry{}, err
	}

	var crc ziparchive.CRC32Accumulator
	var size uint32
	buf := make([]byte, 256*1024)

	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			crc.Write(chunk)
			size += uint32(n)
			if err := tee.Emit(ctx, chunk); err != nil {
				return ziparchive.FileEntry{}, err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return ziparchive.FileEntry{}, fmt.Errorf("read body: %w", readErr)
		}
	}

	descriptor := ziparchive.DataDescriptor(crc.Sum32(), size)
	if err := tee.Emit(ctx, descriptor); err != nil {
		return ziparchive.FileEntry{}, err
	}

	return ziparchive.FileEntry{
		Name:              path,
		CRC32:             crc.Sum32(),
		Size:              size,
		LocalHeaderOffset: uint32(localHeaderOffset),
	}, nil
}

// splitRepo validates repo is "<owner>/<name>" (spec §4.1: must contain at
// least one path separator distinguishing owner from name).
func splitRepo(repo string) (owner, name string, err error) {
	idx := strings.Index(repo, "/")
	if idx <= 0 || idx == len(repo)-1 {
		return "", "", fmt.Errorf("repo must be of the form owner/name, got %q", repo)
	}
	return repo[:idx], repo[idx+1:], nil
}
