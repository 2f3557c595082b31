// Package presign issues time-limited URLs that let a third party read or
// write a single object, or upload one part of a multipart upload, without
// holding credentials.
//
// URLs are signed locally by the backend. Nothing is sent to the server, so
// an issued URL says nothing about whether the object or upload exists.
package presign

import (
	"context"
	"fmt"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// MaxExpiry is the longest lifetime SigV4 accepts for a presigned URL.
const MaxExpiry = 7 * 24 * time.Hour

// Issuer signs URLs against a backend with a default lifetime.
type Issuer struct {
	backend backend.Backend
	ttl     time.Duration
}

// New returns an Issuer. A non-positive ttl selects storetypes.DefaultPresignTTL.
func New(b backend.Backend, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = storetypes.DefaultPresignTTL
	}
	return &Issuer{backend: b, ttl: ttl}
}

// TTL returns the default lifetime of issued URLs.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// URL returns a presigned GET or PUT URL for path with the default lifetime.
func (i *Issuer) URL(ctx context.Context, path string, method storetypes.Method) (string, error) {
	return i.URLWithExpiry(ctx, path, method, i.ttl)
}

// URLWithExpiry returns a presigned GET or PUT URL valid for expiry.
func (i *Issuer) URLWithExpiry(
	ctx context.Context,
	path string,
	method storetypes.Method,
	expiry time.Duration,
) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}
	if !method.Valid() {
		return "", errors.NewError("presign", errors.ErrInvalidInput).
			WithKey(path).
			WithMessage(fmt.Sprintf("unsupported method %q", method))
	}
	if err := validateExpiry(path, expiry); err != nil {
		return "", err
	}

	return i.backend.Presign(ctx, backend.PresignRequest{
		Method: method,
		Key:    path,
		Expiry: expiry,
	})
}

// PartURL returns a presigned PUT URL for one part of a multipart upload.
// The URL carries the partNumber and uploadId query parameters exactly as
// given. Neither the upload nor the part number is checked here; a bad
// value fails when the part is uploaded.
func (i *Issuer) PartURL(ctx context.Context, path, uploadID string, partNumber int32) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}

	return i.backend.Presign(ctx, backend.PresignRequest{
		Method:     storetypes.MethodPut,
		Part:       true,
		Key:        path,
		Expiry:     i.ttl,
		UploadID:   uploadID,
		PartNumber: partNumber,
	})
}

func validateExpiry(path string, expiry time.Duration) error {
	if expiry < time.Second || expiry > MaxExpiry {
		return errors.NewError("presign", errors.ErrInvalidInput).
			WithKey(path).
			WithMessage(fmt.Sprintf("expiry %s outside 1s..%s", expiry, MaxExpiry))
	}
	return nil
}
