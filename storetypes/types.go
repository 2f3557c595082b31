// Package storetypes defines the value types shared by the objectstore
// facade and its backends.
package storetypes

import (
	"net/http"
	"time"
)

// DefaultPresignTTL is the lifetime of presigned URLs when no expiry is configured.
const DefaultPresignTTL = 10 * time.Minute

// MinMultipartSize is the smallest size S3 accepts for a non-final multipart part.
// Objects at or below this size are appended by rewriting the whole object.
const MinMultipartSize int64 = 5 * 1024 * 1024

// MaxPartNumber is the highest part number S3 accepts in a multipart upload.
const MaxPartNumber int32 = 10000

// PutOptions carries per-write object headers.
// The zero value writes an object with backend default headers.
type PutOptions struct {
	// ContentType sets the Content-Type header of the stored object.
	ContentType string

	// ContentDisposition sets the Content-Disposition header of the stored object.
	ContentDisposition string
}

// IsZero reports whether no header is set.
func (o PutOptions) IsZero() bool {
	return o.ContentType == "" && o.ContentDisposition == ""
}

// Part identifies one uploaded part of a multipart upload.
type Part struct {
	// PartNumber is the 1-based position of the part.
	PartNumber int32

	// ETag is the entity tag the backend returned for the part.
	ETag string
}

// Method is the HTTP method a presigned URL authorizes.
type Method string

const (
	// MethodGet authorizes downloading an object.
	MethodGet Method = http.MethodGet

	// MethodPut authorizes uploading an object or a multipart part.
	MethodPut Method = http.MethodPut
)

// Valid reports whether the method can be presigned.
func (m Method) Valid() bool {
	return m == MethodGet || m == MethodPut
}

// ListOptions narrows a listing request.
type ListOptions struct {
	// Prefix limits results to keys beginning with this value.
	Prefix string

	// Recursive disables the "/" delimiter so nested keys are returned
	// instead of their common prefixes.
	Recursive bool

	// MaxKeys caps the number of returned entries. Zero means no cap.
	MaxKeys int32

	// StartAfter returns only entries lexicographically after this key.
	StartAfter string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}
