package awsbackend

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Presign signs a GET, PUT, or UploadPart request locally. No request is
// sent and the object or upload is not checked for existence.
func (b *Backend) Presign(ctx context.Context, req backend.PresignRequest) (string, error) {
	bucket := aws.String(b.bucket)
	key := aws.String(b.ns.Full(req.Key))
	expires := s3.WithPresignExpires(req.Expiry)

	var (
		signed *v4.PresignedHTTPRequest
		err    error
	)
	switch {
	case req.Method == storetypes.MethodGet:
		signed, err = b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: bucket, Key: key}, expires)
	case req.Method == storetypes.MethodPut && req.Part:
		signed, err = b.presigner.PresignUploadPart(ctx, &s3.UploadPartInput{
			Bucket:     bucket,
			Key:        key,
			UploadId:   aws.String(req.UploadID),
			PartNumber: aws.Int32(req.PartNumber),
		}, expires)
	case req.Method == storetypes.MethodPut:
		signed, err = b.presigner.PresignPutObject(ctx, &s3.PutObjectInput{Bucket: bucket, Key: key}, expires)
	default:
		return "", errors.NewObjectError("presign", b.bucket, req.Key,
			fmt.Errorf("%w: unsupported method %q", errors.ErrInvalidInput, req.Method))
	}
	if err != nil {
		return "", errors.NewObjectError("presign", b.bucket, req.Key, translate(err))
	}
	return signed.URL, nil
}
