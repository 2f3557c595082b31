package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// MockMinioAPI is a mock of the MinIO Core operations used by the MinIO backend.
// Operations without a function return zero values and no error.
type MockMinioAPI struct {
	PutObjectFunc func(
		ctx context.Context, bucket, object string, data io.Reader, size int64,
		md5Base64, sha256Hex string, opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
	GetObjectFunc func(
		ctx context.Context, bucket, object string, opts minio.GetObjectOptions,
	) (io.ReadCloser, minio.ObjectInfo, http.Header, error)
	StatObjectFunc func(
		ctx context.Context, bucket, object string, opts minio.StatObjectOptions,
	) (minio.ObjectInfo, error)
	ListObjectsFunc func(
		ctx context.Context, bucket string, opts minio.ListObjectsOptions,
	) <-chan minio.ObjectInfo
	RemoveObjectFunc func(
		ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions,
	) error
	RemoveObjectsFunc func(
		ctx context.Context, bucket string, objects <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions,
	) <-chan minio.RemoveObjectError
	BucketExistsFunc func(ctx context.Context, bucket string) (bool, error)
	MakeBucketFunc   func(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PresignFunc      func(
		ctx context.Context, method, bucket, object string, expires time.Duration, params url.Values,
	) (*url.URL, error)
	NewMultipartUploadFunc func(
		ctx context.Context, bucket, object string, opts minio.PutObjectOptions,
	) (string, error)
	PutObjectPartFunc func(
		ctx context.Context, bucket, object, uploadID string, partID int, data io.Reader, size int64,
		opts minio.PutObjectPartOptions,
	) (minio.ObjectPart, error)
	CopyObjectPartFunc func(
		ctx context.Context, srcBucket, srcObject, destBucket, destObject, uploadID string,
		partID int, startOffset, length int64, metadata map[string]string,
	) (minio.CompletePart, error)
	CompleteMultipartUploadFunc func(
		ctx context.Context, bucket, object, uploadID string, parts []minio.CompletePart,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
	AbortMultipartUploadFunc func(ctx context.Context, bucket, object, uploadID string) error
}

// PutObject mocks the single-request MinIO PutObject operation.
func (m *MockMinioAPI) PutObject(
	ctx context.Context, bucket, object string, data io.Reader, size int64,
	md5Base64, sha256Hex string, opts minio.PutObjectOptions,
) (minio.UploadInfo, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, bucket, object, data, size, md5Base64, sha256Hex, opts)
	}
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

// GetObject mocks the MinIO GetObject operation.
func (m *MockMinioAPI) GetObject(
	ctx context.Context, bucket, object string, opts minio.GetObjectOptions,
) (io.ReadCloser, minio.ObjectInfo, http.Header, error) {
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, bucket, object, opts)
	}
	return io.NopCloser(bytes.NewReader(nil)), minio.ObjectInfo{Key: object}, http.Header{}, nil
}

// StatObject mocks the MinIO StatObject operation.
func (m *MockMinioAPI) StatObject(
	ctx context.Context, bucket, object string, opts minio.StatObjectOptions,
) (minio.ObjectInfo, error) {
	if m.StatObjectFunc != nil {
		return m.StatObjectFunc(ctx, bucket, object, opts)
	}
	return minio.ObjectInfo{Key: object}, nil
}

// ListObjects mocks the MinIO ListObjects operation.
func (m *MockMinioAPI) ListObjects(
	ctx context.Context, bucket string, opts minio.ListObjectsOptions,
) <-chan minio.ObjectInfo {
	if m.ListObjectsFunc != nil {
		return m.ListObjectsFunc(ctx, bucket, opts)
	}
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

// RemoveObject mocks the MinIO RemoveObject operation.
func (m *MockMinioAPI) RemoveObject(
	ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions,
) error {
	if m.RemoveObjectFunc != nil {
		return m.RemoveObjectFunc(ctx, bucket, object, opts)
	}
	return nil
}

// RemoveObjects mocks the MinIO RemoveObjects operation. Without a function
// it drains the input and reports no errors.
func (m *MockMinioAPI) RemoveObjects(
	ctx context.Context, bucket string, objects <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions,
) <-chan minio.RemoveObjectError {
	if m.RemoveObjectsFunc != nil {
		return m.RemoveObjectsFunc(ctx, bucket, objects, opts)
	}
	errCh := make(chan minio.RemoveObjectError)
	go func() {
		defer close(errCh)
		for range objects {
		}
	}()
	return errCh
}

// BucketExists mocks the MinIO BucketExists operation.
func (m *MockMinioAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if m.BucketExistsFunc != nil {
		return m.BucketExistsFunc(ctx, bucket)
	}
	return true, nil
}

// MakeBucket mocks the MinIO MakeBucket operation.
func (m *MockMinioAPI) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	if m.MakeBucketFunc != nil {
		return m.MakeBucketFunc(ctx, bucket, opts)
	}
	return nil
}

// Presign mocks the MinIO Presign operation.
func (m *MockMinioAPI) Presign(
	ctx context.Context, method, bucket, object string, expires time.Duration, params url.Values,
) (*url.URL, error) {
	if m.PresignFunc != nil {
		return m.PresignFunc(ctx, method, bucket, object, expires, params)
	}
	return &url.URL{Scheme: "http", Host: "minio.local", Path: "/" + bucket + "/" + object, RawQuery: params.Encode()}, nil
}

// NewMultipartUpload mocks the MinIO NewMultipartUpload operation.
func (m *MockMinioAPI) NewMultipartUpload(
	ctx context.Context, bucket, object string, opts minio.PutObjectOptions,
) (string, error) {
	if m.NewMultipartUploadFunc != nil {
		return m.NewMultipartUploadFunc(ctx, bucket, object, opts)
	}
	return "", nil
}

// PutObjectPart mocks the MinIO PutObjectPart operation.
func (m *MockMinioAPI) PutObjectPart(
	ctx context.Context, bucket, object, uploadID string, partID int, data io.Reader, size int64,
	opts minio.PutObjectPartOptions,
) (minio.ObjectPart, error) {
	if m.PutObjectPartFunc != nil {
		return m.PutObjectPartFunc(ctx, bucket, object, uploadID, partID, data, size, opts)
	}
	return minio.ObjectPart{PartNumber: partID, Size: size}, nil
}

// CopyObjectPart mocks the MinIO CopyObjectPart operation.
func (m *MockMinioAPI) CopyObjectPart(
	ctx context.Context, srcBucket, srcObject, destBucket, destObject, uploadID string,
	partID int, startOffset, length int64, metadata map[string]string,
) (minio.CompletePart, error) {
	if m.CopyObjectPartFunc != nil {
		return m.CopyObjectPartFunc(ctx, srcBucket, srcObject, destBucket, destObject, uploadID,
			partID, startOffset, length, metadata)
	}
	return minio.CompletePart{PartNumber: partID}, nil
}

// CompleteMultipartUpload mocks the MinIO CompleteMultipartUpload operation.
func (m *MockMinioAPI) CompleteMultipartUpload(
	ctx context.Context, bucket, object, uploadID string, parts []minio.CompletePart,
	opts minio.PutObjectOptions,
) (minio.UploadInfo, error) {
	if m.CompleteMultipartUploadFunc != nil {
		return m.CompleteMultipartUploadFunc(ctx, bucket, object, uploadID, parts, opts)
	}
	return minio.UploadInfo{Bucket: bucket, Key: object}, nil
}

// AbortMultipartUpload mocks the MinIO AbortMultipartUpload operation.
func (m *MockMinioAPI) AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error {
	if m.AbortMultipartUploadFunc != nil {
		return m.AbortMultipartUploadFunc(ctx, bucket, object, uploadID)
	}
	return nil
}

// ListResult returns a closed channel yielding infos, for use in ListObjectsFunc.
func ListResult(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}
