package miniobackend

import (
	"context"
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
)

// Presign signs a request locally. With a configured region no request is
// sent to resolve the bucket location.
func (b *Backend) Presign(ctx context.Context, req backend.PresignRequest) (string, error) {
	if !req.Method.Valid() {
		return "", errors.NewObjectError("presign", b.bucket, req.Key,
			fmt.Errorf("%w: unsupported method %q", errors.ErrInvalidInput, req.Method))
	}

	u, err := b.api.Presign(ctx, string(req.Method), b.bucket, b.ns.Full(req.Key), req.Expiry, req.Query())
	if err != nil {
		return "", errors.NewObjectError("presign", b.bucket, req.Key, translate(err))
	}
	return u.String(), nil
}
