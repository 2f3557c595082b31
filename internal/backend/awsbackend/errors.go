package awsbackend

import (
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// translate classifies an SDK error. API errors returned by the service are
// protocol errors, missing objects are not-found errors, and everything else
// (connection failures, timeouts, cancellation) is a transport error.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return errors.Mark(errors.ErrObjectNotFound, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return errors.Mark(errors.ErrProtocol, err)
	}
	return errors.Mark(errors.ErrTransport, err)
}

// isNotFound reports whether err means the object does not exist.
// HeadObject and HeadBucket report a bare 404 as NotFound.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// isBucketMissing reports whether a bucket lookup found no bucket.
func isBucketMissing(err error) bool {
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	return isNotFound(err)
}
