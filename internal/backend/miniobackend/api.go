package miniobackend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// API is the subset of the MinIO client used by the backend.
// Object operations use the low-level Core calls so that every write is a
// single request the backend controls.
type API interface {
	PutObject(
		ctx context.Context, bucket, object string, data io.Reader, size int64,
		md5Base64, sha256Hex string, opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
	GetObject(
		ctx context.Context, bucket, object string, opts minio.GetObjectOptions,
	) (io.ReadCloser, minio.ObjectInfo, http.Header, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	RemoveObjects(
		ctx context.Context, bucket string, objects <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions,
	) <-chan minio.RemoveObjectError
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	Presign(
		ctx context.Context, method, bucket, object string, expires time.Duration, params url.Values,
	) (*url.URL, error)
	NewMultipartUpload(ctx context.Context, bucket, object string, opts minio.PutObjectOptions) (string, error)
	PutObjectPart(
		ctx context.Context, bucket, object, uploadID string, partID int, data io.Reader, size int64,
		opts minio.PutObjectPartOptions,
	) (minio.ObjectPart, error)
	CopyObjectPart(
		ctx context.Context, srcBucket, srcObject, destBucket, destObject, uploadID string,
		partID int, startOffset, length int64, metadata map[string]string,
	) (minio.CompletePart, error)
	CompleteMultipartUpload(
		ctx context.Context, bucket, object, uploadID string, parts []minio.CompletePart,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
	AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error
}

// coreClient adapts minio.Core to API. Core shadows the channel-based
// ListObjects of the embedded Client with a single-page variant.
type coreClient struct {
	*minio.Core
}

var _ API = coreClient{}

// ListObjects streams every listed entry, paging as needed.
func (c coreClient) ListObjects(
	ctx context.Context,
	bucket string,
	opts minio.ListObjectsOptions,
) <-chan minio.ObjectInfo {
	return c.Client.ListObjects(ctx, bucket, opts)
}
