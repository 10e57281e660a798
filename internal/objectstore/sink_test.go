package objectstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

// fakeS3 is a minimal in-memory stand-in for S3API, recording the parts it
// receives in upload order.
type fakeS3 struct {
	createErr error
	uploadErr error
	completeErr error
	abortErr  error

	aborted    bool
	completed  bool
	uploadID   string
	partBodies [][]byte
	nextPart   int32
}

func (f *fakeS3) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.uploadID = "upload-1"
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(f.uploadID)}, nil
}

func (f *fakeS3) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.partBodies = append(f.partBodies, body)
	f.nextPart++
	etag := "etag-" + string(rune('a'+f.nextPart))
	return &s3.UploadPartOutput{ETag: aws.String(etag)}, nil
}

func (f *fakeS3) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	f.completed = true
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (f *fakeS3) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	f.aborted = true
	return &s3.AbortMultipartUploadOutput{}, f.abortErr
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func TestMultipartSinkSlicesPartsAtMinSize(t *testing.T) {
	api := &fakeS3{}
	sink := NewMultipartSink(api, "bucket", "key", 10, 10)
	require.NoError(t, sink.Create(context.Background(), "application/zip"))

	require.NoError(t, sink.Append(context.Background(), make([]byte, 25)))
	require.Len(t, api.partBodies, 2, "two full 10-byte parts should have been uploaded eagerly")

	require.NoError(t, sink.FlushAndSeal(context.Background(), nil))
	require.Len(t, api.partBodies, 3, "the trailing 5 bytes become the final short part")
	require.True(t, api.completed)

	require.Len(t, api.partBodies[0], 10)
	require.Len(t, api.partBodies[1], 10)
	require.Len(t, api.partBodies[2], 5)
}

func TestMultipartSinkCapsPartSizeAtMax(t *testing.T) {
	api := &fakeS3{}
	sink := NewMultipartSink(api, "bucket", "key", 10, 15)
	require.NoError(t, sink.Create(context.Background(), "application/zip"))

	require.NoError(t, sink.Append(context.Background(), make([]byte, 40)))
	require.NoError(t, sink.FlushAndSeal(context.Background(), nil))

	for _, p := range api.partBodies {
		require.LessOrEqual(t, len(p), 15)
	}
}

func TestMultipartSinkAbortsOnUploadFailure(t *testing.T) {
	api := &fakeS3{uploadErr: errors.New("network error")}
	sink := NewMultipartSink(api, "bucket", "key", 5, 5)
	require.NoError(t, sink.Create(context.Background(), "application/zip"))

	err := sink.Append(context.Background(), make([]byte, 5))
	require.Error(t, err)

	sink.Abort(context.Background())
	require.True(t, api.aborted)
}

func TestMultipartSinkAbortIsNoopWithoutCreate(t *testing.T) {
	api := &fakeS3{}
	sink := NewMultipartSink(api, "bucket", "key", 5, 5)
	sink.Abort(context.Background())
	require.False(t, api.aborted)
}
