package awsbackend

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// CreateMultipartUpload starts a multipart upload.
func (b *Backend) CreateMultipartUpload(ctx context.Context, key string) (string, error) {
	output, err := b.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.ns.Full(key)),
	})
	if err != nil {
		return "", errors.NewObjectError("createMultipartUpload", b.bucket, key, translate(err))
	}
	return aws.ToString(output.UploadId), nil
}

// UploadPart uploads a single part of known length.
func (b *Backend) UploadPart(
	ctx context.Context,
	key, uploadID string,
	partNumber int32,
	r io.Reader,
	size int64,
) (string, error) {
	output, err := b.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.ns.Full(key)),
		UploadId:      aws.String(uploadID),
		PartNumber:    aws.Int32(partNumber),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", errors.NewObjectError("uploadPart", b.bucket, key, translate(err))
	}
	return aws.ToString(output.ETag), nil
}

// UploadPartCopy copies srcKey into a part without transferring its bytes
// through the client.
func (b *Backend) UploadPartCopy(
	ctx context.Context,
	key, uploadID string,
	partNumber int32,
	srcKey string,
	size int64,
) (string, error) {
	input := &s3.UploadPartCopyInput{
		Bucket:     aws.String(b.bucket),
		Key:        aws.String(b.ns.Full(key)),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
		CopySource: aws.String(copySource(b.bucket, b.ns.Full(srcKey))),
	}
	if size > 0 {
		input.CopySourceRange = aws.String(fmt.Sprintf("bytes=0-%d", size-1))
	}

	output, err := b.client.UploadPartCopy(ctx, input)
	if err != nil {
		return "", errors.NewObjectError("uploadPartCopy", b.bucket, key, translate(err))
	}
	if output.CopyPartResult == nil {
		return "", nil
	}
	return aws.ToString(output.CopyPartResult.ETag), nil
}

// CompleteMultipartUpload assembles the given parts into the final object.
func (b *Backend) CompleteMultipartUpload(
	ctx context.Context,
	key, uploadID string,
	parts []storetypes.Part,
) error {
	completed := make([]types.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.PartNumber),
		})
	}

	_, err := b.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(b.bucket),
		Key:      aws.String(b.ns.Full(key)),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return errors.NewObjectError("completeMultipartUpload", b.bucket, key, translate(err))
	}
	return nil
}

// AbortMultipartUpload discards an upload. Errors, including NoSuchUpload
// for an upload already aborted or completed, are returned unchanged in kind.
func (b *Backend) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	_, err := b.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(b.bucket),
		Key:      aws.String(b.ns.Full(key)),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return errors.NewObjectError("abortMultipartUpload", b.bucket, key, translate(err))
	}
	return nil
}

// copySource formats the x-amz-copy-source value, URL-encoding the key
// while keeping its path separators.
func copySource(bucket, key string) string {
	return (&url.URL{Path: bucket + "/" + key}).EscapedPath()
}
