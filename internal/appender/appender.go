package appender

import (
	"context"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/staging"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Appender performs appends against a backend.
type Appender struct {
	backend backend.Backend
	stager  *staging.Stager
	logger  *slog.Logger
}

// New returns an Appender staging new data through stager.
// A nil logger discards output.
func New(b backend.Backend, stager *staging.Stager, logger *slog.Logger) *Appender {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if stager == nil {
		stager = staging.New(nil, "")
	}
	return &Appender{backend: b, stager: stager, logger: logger}
}

// Append adds the contents of r to the end of the object at path, creating
// it if nothing is listed under path. It returns path.
//
// Each call is independent: a composed append always produces exactly two
// parts and cannot be resumed after a failure.
func (a *Appender) Append(ctx context.Context, path string, r io.Reader) (string, error) {
	exists, size, err := a.lookup(ctx, path)
	if err != nil {
		return "", errors.NewError("append", err).WithBucket(a.backend.Bucket()).WithKey(path)
	}

	strategy := Plan(exists, size, a.backend.Capabilities())
	a.logger.Debug("appending to object",
		"path", path,
		"strategy", strategy.String(),
		"size", humanize.IBytes(uint64(size)))

	switch strategy {
	case StrategyCreate:
		err = a.backend.Put(ctx, path, r, -1, storetypes.PutOptions{})
	case StrategyConcat:
		err = a.concat(ctx, path, r)
	default:
		err = a.compose(ctx, path, r, size)
	}
	if err != nil {
		return "", errors.NewError("append", err).WithBucket(a.backend.Bucket()).WithKey(path)
	}
	return path, nil
}

// lookup reports whether anything is listed under path and, if so, the size
// of the object at path. A listed prefix with no object of that exact name
// counts as missing.
func (a *Appender) lookup(ctx context.Context, path string) (bool, int64, error) {
	keys, err := a.backend.List(ctx, storetypes.ListOptions{Prefix: path, MaxKeys: 1})
	if err != nil {
		return false, 0, err
	}
	if len(keys) == 0 {
		return false, 0, nil
	}

	info, err := a.backend.Stat(ctx, path)
	if err != nil {
		if errors.IsObjectNotFound(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size, nil
}

func (a *Appender) concat(ctx context.Context, path string, r io.Reader) error {
	original, err := a.backend.Get(ctx, path)
	if err != nil {
		return err
	}
	defer original.Close()

	return a.backend.Put(ctx, path, io.MultiReader(original, r), -1, storetypes.PutOptions{})
}

// compose rewrites the object as a two-part multipart upload. On failure the
// upload is aborted and the abort result discarded.
func (a *Appender) compose(ctx context.Context, path string, r io.Reader, size int64) error {
	uploadID, err := a.backend.CreateMultipartUpload(ctx, path)
	if err != nil {
		return err
	}

	if err := a.composeParts(ctx, path, uploadID, r, size); err != nil {
		if abortErr := a.backend.AbortMultipartUpload(context.WithoutCancel(ctx), path, uploadID); abortErr != nil {
			a.logger.Debug("abort after failed append", "path", path, "upload_id", uploadID, "error", abortErr)
		}
		return err
	}
	return nil
}

func (a *Appender) composeParts(ctx context.Context, path, uploadID string, r io.Reader, size int64) error {
	existing, err := a.backend.UploadPartCopy(ctx, path, uploadID, 1, path, size)
	if err != nil {
		return err
	}

	staged, err := a.stager.Stage(r)
	if err != nil {
		return err
	}

	appended, err := a.backend.UploadPart(ctx, path, uploadID, 2, staged, staged.Size())
	if err = staging.Join(err, staged.Release()); err != nil {
		return err
	}

	return a.backend.CompleteMultipartUpload(ctx, path, uploadID, []storetypes.Part{
		{PartNumber: 1, ETag: existing},
		{PartNumber: 2, ETag: appended},
	})
}
