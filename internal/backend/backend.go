// Package backend defines the contract every S3 SDK family implements.
//
// A Backend addresses objects by logical path: implementations prefix keys
// with the configured sub-path before calling the SDK and strip it from
// returned keys. Errors are returned as *errors.Error classified with one of
// the objectstore sentinels.
package backend

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Capabilities describes how a backend behaves for size-sensitive writes.
type Capabilities struct {
	// Name identifies the SDK family ("aws" or "minio").
	Name string

	// SizedStreaming reports whether a single Put of unknown length is split
	// into parallel parts by the SDK. When false, unknown lengths are staged
	// to a temp file and sent as one request.
	SizedStreaming bool

	// ChecksumAlgorithm is the checksum attached to writes, or "" for none.
	ChecksumAlgorithm string

	// MinMultipartSize is the smallest object that can be used as a copied
	// multipart part. Appends to objects at or below it are rewritten whole.
	MinMultipartSize int64

	// MaxPartNumber is the highest part number the backend accepts.
	MaxPartNumber int32
}

// PresignRequest describes a URL to sign.
type PresignRequest struct {
	Method storetypes.Method
	Key    string
	Expiry time.Duration

	// Part selects an UploadPart request for UploadID and PartNumber.
	// Both values are signed as given; the backend judges them on upload.
	Part       bool
	UploadID   string
	PartNumber int32
}

// Query returns the extra query parameters of the request.
func (r PresignRequest) Query() url.Values {
	if !r.Part {
		return nil
	}
	return url.Values{
		"partNumber": []string{strconv.FormatInt(int64(r.PartNumber), 10)},
		"uploadId":   []string{r.UploadID},
	}
}

// Backend is the object storage contract shared by both SDK families.
type Backend interface {
	// Capabilities returns the static behavior of this backend.
	Capabilities() Capabilities

	// Bucket returns the configured bucket name.
	Bucket() string

	// EnsureBucket creates the bucket if it does not exist.
	EnsureBucket(ctx context.Context) error

	// Put stores r at key. A negative size means the length is unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts storetypes.PutOptions) error

	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Stat returns object metadata.
	Stat(ctx context.Context, key string) (storetypes.ObjectInfo, error)

	// List returns object keys and, for non-recursive listings, common
	// prefixes ending in "/".
	List(ctx context.Context, opts storetypes.ListOptions) ([]string, error)

	// Remove deletes one object. Removing a missing object succeeds.
	Remove(ctx context.Context, key string) error

	// RemoveMany deletes a batch of objects and returns the keys removed.
	RemoveMany(ctx context.Context, keys []string) ([]string, error)

	// CreateMultipartUpload starts a multipart upload and returns its id.
	CreateMultipartUpload(ctx context.Context, key string) (string, error)

	// UploadPart uploads one part of known size and returns its ETag.
	UploadPart(ctx context.Context, key, uploadID string, partNumber int32, r io.Reader, size int64) (string, error)

	// UploadPartCopy copies the whole of srcKey, which is size bytes long,
	// into a part server-side and returns its ETag.
	UploadPartCopy(ctx context.Context, key, uploadID string, partNumber int32, srcKey string, size int64) (string, error)

	// CompleteMultipartUpload assembles parts into the final object.
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []storetypes.Part) error

	// AbortMultipartUpload discards an upload and its parts.
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error

	// Presign returns a URL authorizing the described request.
	Presign(ctx context.Context, req PresignRequest) (string, error)
}
