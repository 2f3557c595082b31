package objectstore

import (
	"context"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
)

// Append adds the contents of r to the end of the object at path, creating
// the object if it does not exist. It returns path.
//
// Objects up to 5 MiB are downloaded and rewritten with the new data.
// Larger objects are rewritten server-side as a two-part multipart upload
// whose first part is copied from the existing object; if any step fails
// the upload is aborted and the object is left unchanged.
//
// Appends are not atomic with respect to concurrent writers of the same
// object.
func (c *Client) Append(ctx context.Context, path string, r io.Reader) (string, error) {
	if err := validation.ValidateObjectKey(path); err != nil {
		return "", err
	}
	if r == nil {
		return "", errors.NewError("append", errors.ErrInvalidInput).
			WithKey(path).
			WithMessage("reader cannot be nil")
	}

	result, err := c.appender.Append(ctx, path, r)
	if err != nil {
		c.logger.Error("failed to append to object", "path", path, "error", err)
		return "", err
	}
	return result, nil
}
