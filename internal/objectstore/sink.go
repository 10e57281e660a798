package objectstore

import (
	"bytes"
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client the sink needs. Accepting an interface
// (rather than the concrete client) lets tests inject a fake, the same way
// buildbarn-bb-storage's blobstore package is built against small
// interfaces rather than concrete SDK clients.
type S3API interface {
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// partReceipt records one completed part (spec §3 multipart-sink state).
type partReceipt struct {
	number int32
	etag   string
}

// MultipartSink buffers outgoing bytes and emits bounded-size, ordered
// parts to an S3-compatible object store (spec §4.5). It owns no locks: a
// single request's pipeline drives it from a single goroutine (spec §5).
type MultipartSink struct {
	api    S3API
	bucket string
	key    string

	uploadID string
	pending  []byte
	receipts []partReceipt
	nextPart int32

	minPartSize int64
	maxPartSize int64
}

// NewMultipartSink builds a sink for bucket/key with the given part-size
// bounds. minPartSize/maxPartSize are deployment constants (spec §9 Open
// Question 4); the caller is responsible for validating them against the
// backend's real limits (config.Load does this).
func NewMultipartSink(api S3API, bucket, key string, minPartSize, maxPartSize int64) *MultipartSink {
	return &MultipartSink{
		api:         api,
		bucket:      bucket,
		key:         key,
		nextPart:    1,
		minPartSize: minPartSize,
		maxPartSize: maxPartSize,
	}
}

// Create initiates the multipart upload.
func (s *MultipartSink) Create(ctx context.Context, contentType string) error {
	out, err := s.api.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      awssdk.String(s.bucket),
		Key:         awssdk.String(s.key),
		ContentType: awssdk.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("create multipart upload: %w", err)
	}
	if out.UploadId == nil {
		return fmt.Errorf("create multipart upload: missing upload id")
	}
	s.uploadID = *out.UploadId
	return nil
}

// Append enqueues p into the pending buffer, uploading a part as soon as at
// least min-part-size bytes are pending (spec §4.5): a max-part-size slice
// while more than max-part-size bytes are pending, otherwise a
// min-part-size slice. An upload failure aborts the multipart upload and is
// returned. Once Append returns without error, p is conceptually committed
// to the archive stream (it contributes to A).
func (s *MultipartSink) Append(ctx context.Context, p []byte) error {
	s.pending = append(s.pending, p...)

	for int64(len(s.pending)) >= s.minPartSize {
		size := s.minPartSize
		if int64(len(s.pending)) > s.maxPartSize {
			size = s.maxPartSize
		}
		if err := s.uploadPart(ctx, s.pending[:size]); err != nil {
			s.Abort(ctx)
			return err
		}
		s.pending = s.pending[size:]
	}
	return nil
}

// FlushAndSeal appends tailBytes, uploads any remaining non-empty pending
// buffer as the final (possibly short) part, then completes the upload.
func (s *MultipartSink) FlushAndSeal(ctx context.Context, tailBytes []byte) error {
	s.pending = append(s.pending, tailBytes...)

	if len(s.pending) > 0 {
		if err := s.uploadPart(ctx, s.pending); err != nil {
			return err
		}
		s.pending = nil
	}

	parts := make([]types.CompletedPart, len(s.receipts))
	for i, r := range s.receipts {
		number := r.number
		etag := r.etag
		parts[i] = types.CompletedPart{PartNumber: &number, ETag: &etag}
	}

	_, err := s.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          awssdk.String(s.bucket),
		Key:             awssdk.String(s.key),
		UploadId:        awssdk.String(s.uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		return fmt.Errorf("complete multipart upload: %w", err)
	}
	return nil
}

// Abort cancels the upload on the backend. Idempotent: safe to call when no
// upload is live (e.g. Create never succeeded).
func (s *MultipartSink) Abort(ctx context.Context) {
	if s.uploadID == "" {
		return
	}
	_, _ = s.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   awssdk.String(s.bucket),
		Key:      awssdk.String(s.key),
		UploadId: awssdk.String(s.uploadID),
	})
}

func (s *MultipartSink) uploadPart(ctx context.Context, part []byte) error {
	number := s.nextPart
	out, err := s.api.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     awssdk.String(s.bucket),
		Key:        awssdk.String(s.key),
		UploadId:   awssdk.String(s.uploadID),
		PartNumber: &number,
		Body:       bytes.NewReader(part),
	})
	if err != nil {
		return fmt.Errorf("upload part %d: %w", number, err)
	}
	if out.ETag == nil {
		return fmt.Errorf("upload part %d: missing etag", number)
	}
	s.receipts = append(s.receipts, partReceipt{number: number, etag: *out.ETag})
	s.nextPart++
	return nil
}

// PutObject uploads a small object (the torrent file) in a single request.
func PutObject(ctx context.Context, api S3API, bucket, key string, body []byte, contentType string) error {
	_, err := api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(bucket),
		Key:         awssdk.String(key),
		Body:        bytes.NewReader(body),
		ContentType: awssdk.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}
