package objectstore

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
)

// InitiateMultipartUpload starts a multipart upload for path and returns
// its upload id.
func (c *Client) InitiateMultipartUpload(ctx context.Context, path string) (string, error) {
	return c.session.Initiate(ctx, path)
}

// PresignedMultipartUploadURL returns a URL a third party can PUT part
// partNumber of the upload to. The upload is not checked; a URL for an
// unknown upload fails only when used.
func (c *Client) PresignedMultipartUploadURL(
	ctx context.Context,
	path, uploadID string,
	partNumber int32,
) (string, error) {
	return c.session.PresignPart(ctx, path, uploadID, partNumber)
}

// UploadMultipartPart uploads the local file filename as part partNumber
// and returns the part ETag to pass to CompleteMultipartUpload.
func (c *Client) UploadMultipartPart(
	ctx context.Context,
	path, uploadID string,
	partNumber int32,
	filename string,
) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}

	file, size, err := c.openLocal("uploadPart", path, filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return c.session.UploadPart(ctx, path, uploadID, partNumber, file, size)
}

// CompleteMultipartUpload assembles the upload from etags, which are taken
// as parts 1..N in order, and returns path.
//
// Errors:
//   - ErrInvalidInput: If etags is empty; no request is made
//   - ErrProtocol: If the upload is unknown, finished, or a part is invalid
func (c *Client) CompleteMultipartUpload(
	ctx context.Context,
	path, uploadID string,
	etags []string,
) (string, error) {
	result, err := c.session.Complete(ctx, path, uploadID, etags)
	if err != nil {
		c.logger.Error("failed to complete multipart upload", "path", path, "upload_id", uploadID, "error", err)
		return "", err
	}
	return result, nil
}

// AbortMultipartUpload discards the upload and its parts. Aborting an upload
// that was already aborted or completed returns the backend's error.
func (c *Client) AbortMultipartUpload(ctx context.Context, path, uploadID string) error {
	return c.session.Abort(ctx, path, uploadID)
}
