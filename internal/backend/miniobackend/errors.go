package miniobackend

import (
	"github.com/minio/minio-go/v7"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// translate classifies a MinIO error. Responses carrying an S3 error code are
// protocol errors, NoSuchKey is a not-found error, and anything without a
// code never reached the service.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch code := minio.ToErrorResponse(err).Code; code {
	case "NoSuchKey", "NotFound":
		return errors.Mark(errors.ErrObjectNotFound, err)
	case "":
		return errors.Mark(errors.ErrTransport, err)
	default:
		return errors.Mark(errors.ErrProtocol, err)
	}
}
