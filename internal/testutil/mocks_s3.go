// Package testutil provides test doubles, data generators and container
// helpers shared by the objectstore test suites.
package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MockS3Client is a func-field double of the S3 operations used by the AWS
// backend. Every call is recorded by operation name. Operations without a
// function succeed with a plausible output: an empty body for GetObject, a
// fixed upload id and part ETags for multipart calls, and every requested
// key reported deleted for DeleteObjects.
type MockS3Client struct {
	PutObjectFunc               func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObjectFunc               func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObjectFunc              func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2Func           func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjectFunc            func(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjectsFunc           func(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	CreateMultipartUploadFunc   func(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPartFunc              func(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	UploadPartCopyFunc          func(context.Context, *s3.UploadPartCopyInput, ...func(*s3.Options)) (*s3.UploadPartCopyOutput, error)
	CompleteMultipartUploadFunc func(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUploadFunc    func(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
	HeadBucketFunc              func(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucketFunc            func(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error)

	mu    sync.Mutex
	calls []string
}

// MockUploadID is the upload id returned when CreateMultipartUploadFunc is nil.
const MockUploadID = "mock-upload-id"

// Calls returns the operations invoked so far, in order.
func (m *MockS3Client) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockS3Client) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
}

// dispatch records op and calls fn, or returns fallback when fn is nil.
func dispatch[In, Out any](
	ctx context.Context,
	m *MockS3Client,
	op string,
	fn func(context.Context, In, ...func(*s3.Options)) (Out, error),
	in In,
	optFns []func(*s3.Options),
	fallback func() Out,
) (Out, error) {
	m.record(op)
	if fn != nil {
		return fn(ctx, in, optFns...)
	}
	return fallback(), nil
}

func (m *MockS3Client) PutObject(
	ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	return dispatch(ctx, m, "PutObject", m.PutObjectFunc, in, optFns, func() *s3.PutObjectOutput {
		if in.Body != nil {
			_, _ = io.Copy(io.Discard, in.Body)
		}
		return &s3.PutObjectOutput{ETag: aws.String(`"mock-etag"`)}
	})
}

func (m *MockS3Client) GetObject(
	ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	return dispatch(ctx, m, "GetObject", m.GetObjectFunc, in, optFns, func() *s3.GetObjectOutput {
		return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(nil)), ContentLength: aws.Int64(0)}
	})
}

func (m *MockS3Client) HeadObject(
	ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	return dispatch(ctx, m, "HeadObject", m.HeadObjectFunc, in, optFns, func() *s3.HeadObjectOutput {
		return &s3.HeadObjectOutput{ContentLength: aws.Int64(0)}
	})
}

func (m *MockS3Client) ListObjectsV2(
	ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	return dispatch(ctx, m, "ListObjectsV2", m.ListObjectsV2Func, in, optFns, func() *s3.ListObjectsV2Output {
		return &s3.ListObjectsV2Output{}
	})
}

func (m *MockS3Client) DeleteObject(
	ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	return dispatch(ctx, m, "DeleteObject", m.DeleteObjectFunc, in, optFns, func() *s3.DeleteObjectOutput {
		return &s3.DeleteObjectOutput{}
	})
}

func (m *MockS3Client) DeleteObjects(
	ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	return dispatch(ctx, m, "DeleteObjects", m.DeleteObjectsFunc, in, optFns, func() *s3.DeleteObjectsOutput {
		out := &s3.DeleteObjectsOutput{}
		if in.Delete != nil {
			for _, obj := range in.Delete.Objects {
				out.Deleted = append(out.Deleted, types.DeletedObject{Key: obj.Key})
			}
		}
		return out
	})
}

func (m *MockS3Client) CreateMultipartUpload(
	ctx context.Context, in *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options),
) (*s3.CreateMultipartUploadOutput, error) {
	return dispatch(ctx, m, "CreateMultipartUpload", m.CreateMultipartUploadFunc, in, optFns,
		func() *s3.CreateMultipartUploadOutput {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String(MockUploadID)}
		})
}

func (m *MockS3Client) UploadPart(
	ctx context.Context, in *s3.UploadPartInput, optFns ...func(*s3.Options),
) (*s3.UploadPartOutput, error) {
	return dispatch(ctx, m, "UploadPart", m.UploadPartFunc, in, optFns, func() *s3.UploadPartOutput {
		if in.Body != nil {
			_, _ = io.Copy(io.Discard, in.Body)
		}
		return &s3.UploadPartOutput{ETag: aws.String(`"mock-part-etag"`)}
	})
}

func (m *MockS3Client) UploadPartCopy(
	ctx context.Context, in *s3.UploadPartCopyInput, optFns ...func(*s3.Options),
) (*s3.UploadPartCopyOutput, error) {
	return dispatch(ctx, m, "UploadPartCopy", m.UploadPartCopyFunc, in, optFns, func() *s3.UploadPartCopyOutput {
		return &s3.UploadPartCopyOutput{CopyPartResult: &types.CopyPartResult{ETag: aws.String(`"mock-copy-etag"`)}}
	})
}

func (m *MockS3Client) CompleteMultipartUpload(
	ctx context.Context, in *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options),
) (*s3.CompleteMultipartUploadOutput, error) {
	return dispatch(ctx, m, "CompleteMultipartUpload", m.CompleteMultipartUploadFunc, in, optFns,
		func() *s3.CompleteMultipartUploadOutput {
			return &s3.CompleteMultipartUploadOutput{Key: in.Key}
		})
}

func (m *MockS3Client) AbortMultipartUpload(
	ctx context.Context, in *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options),
) (*s3.AbortMultipartUploadOutput, error) {
	return dispatch(ctx, m, "AbortMultipartUpload", m.AbortMultipartUploadFunc, in, optFns,
		func() *s3.AbortMultipartUploadOutput {
			return &s3.AbortMultipartUploadOutput{}
		})
}

func (m *MockS3Client) HeadBucket(
	ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options),
) (*s3.HeadBucketOutput, error) {
	return dispatch(ctx, m, "HeadBucket", m.HeadBucketFunc, in, optFns, func() *s3.HeadBucketOutput {
		return &s3.HeadBucketOutput{}
	})
}

func (m *MockS3Client) CreateBucket(
	ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options),
) (*s3.CreateBucketOutput, error) {
	return dispatch(ctx, m, "CreateBucket", m.CreateBucketFunc, in, optFns, func() *s3.CreateBucketOutput {
		return &s3.CreateBucketOutput{}
	})
}
