package miniobackend

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// CreateMultipartUpload starts a multipart upload.
func (b *Backend) CreateMultipartUpload(ctx context.Context, key string) (string, error) {
	uploadID, err := b.api.NewMultipartUpload(ctx, b.bucket, b.ns.Full(key), minio.PutObjectOptions{})
	if err != nil {
		return "", errors.NewObjectError("createMultipartUpload", b.bucket, key, translate(err))
	}
	return uploadID, nil
}

// UploadPart uploads a single part of known length.
func (b *Backend) UploadPart(
	ctx context.Context,
	key, uploadID string,
	partNumber int32,
	r io.Reader,
	size int64,
) (string, error) {
	part, err := b.api.PutObjectPart(ctx, b.bucket, b.ns.Full(key), uploadID,
		int(partNumber), r, size, minio.PutObjectPartOptions{})
	if err != nil {
		return "", errors.NewObjectError("uploadPart", b.bucket, key, translate(err))
	}
	return part.ETag, nil
}

// UploadPartCopy copies the first size bytes of srcKey into a part.
// A non-positive size copies the whole source.
func (b *Backend) UploadPartCopy(
	ctx context.Context,
	key, uploadID string,
	partNumber int32,
	srcKey string,
	size int64,
) (string, error) {
	length := int64(-1)
	if size > 0 {
		length = size
	}

	part, err := b.api.CopyObjectPart(ctx,
		b.bucket, b.ns.Full(srcKey),
		b.bucket, b.ns.Full(key),
		uploadID, int(partNumber), 0, length, nil)
	if err != nil {
		return "", errors.NewObjectError("uploadPartCopy", b.bucket, key, translate(err))
	}
	return part.ETag, nil
}

// CompleteMultipartUpload assembles the given parts into the final object.
func (b *Backend) CompleteMultipartUpload(
	ctx context.Context,
	key, uploadID string,
	parts []storetypes.Part,
) error {
	completed := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, minio.CompletePart{
			PartNumber: int(p.PartNumber),
			ETag:       p.ETag,
		})
	}

	_, err := b.api.CompleteMultipartUpload(ctx, b.bucket, b.ns.Full(key), uploadID,
		completed, minio.PutObjectOptions{})
	if err != nil {
		return errors.NewObjectError("completeMultipartUpload", b.bucket, key, translate(err))
	}
	return nil
}

// AbortMultipartUpload discards an upload and its parts.
func (b *Backend) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	if err := b.api.AbortMultipartUpload(ctx, b.bucket, b.ns.Full(key), uploadID); err != nil {
		return errors.NewObjectError("abortMultipartUpload", b.bucket, key, translate(err))
	}
	return nil
}
