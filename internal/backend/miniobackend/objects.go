package miniobackend

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/minio/minio-go/v7"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/staging"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Put stores r in a single request. Streams of unknown length are staged to
// a temp file first so the request carries a Content-Length.
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, size int64, opts storetypes.PutOptions) error {
	var staged *staging.Staged
	if size < 0 {
		var err error
		if staged, err = b.stager.Stage(r); err != nil {
			return errors.NewObjectError("putObject", b.bucket, key, err)
		}
		r, size = staged, staged.Size()
	}

	putOpts := minio.PutObjectOptions{
		ContentType:        opts.ContentType,
		ContentDisposition: opts.ContentDisposition,
	}
	_, err := b.api.PutObject(ctx, b.bucket, b.ns.Full(key), r, size, "", "", putOpts)
	if err = staging.Join(translate(err), staged.Release()); err != nil {
		return errors.NewObjectError("putObject", b.bucket, key, err)
	}
	return nil
}

// Get opens the object body for streaming.
func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	body, _, _, err := b.api.GetObject(ctx, b.bucket, b.ns.Full(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.NewObjectError("getObject", b.bucket, key, translate(err))
	}
	return body, nil
}

// Stat returns object metadata.
func (b *Backend) Stat(ctx context.Context, key string) (storetypes.ObjectInfo, error) {
	info, err := b.api.StatObject(ctx, b.bucket, b.ns.Full(key), minio.StatObjectOptions{})
	if err != nil {
		return storetypes.ObjectInfo{}, errors.NewObjectError("headObject", b.bucket, key, translate(err))
	}

	return storetypes.ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// List collects entries from the listing channel until MaxKeys entries are
// read, then cancels the listing and drains the channel.
func (b *Backend) List(ctx context.Context, opts storetypes.ListOptions) ([]string, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	listOpts := minio.ListObjectsOptions{
		Prefix:    b.ns.Full(opts.Prefix),
		Recursive: opts.Recursive,
		MaxKeys:   int(opts.MaxKeys),
	}
	if opts.StartAfter != "" {
		listOpts.StartAfter = b.ns.Full(opts.StartAfter)
	}

	objects := b.api.ListObjects(listCtx, b.bucket, listOpts)
	defer func() {
		cancel()
		for range objects {
		}
	}()

	keys := make([]string, 0)
	for obj := range objects {
		if obj.Err != nil {
			return nil, errors.NewObjectError("listObjects", b.bucket, opts.Prefix, translate(obj.Err))
		}
		keys = append(keys, obj.Key)
		if opts.MaxKeys > 0 && len(keys) >= int(opts.MaxKeys) {
			break
		}
	}

	sort.Strings(keys)
	return b.ns.StripAll(keys), nil
}

// Remove deletes a single object.
func (b *Backend) Remove(ctx context.Context, key string) error {
	if err := b.api.RemoveObject(ctx, b.bucket, b.ns.Full(key), minio.RemoveObjectOptions{}); err != nil {
		return errors.NewObjectError("deleteObject", b.bucket, key, translate(err))
	}
	return nil
}

// RemoveMany deletes keys through the MinIO bulk delete API, which batches
// requests itself. Keys that failed are reported in the aggregated error and
// excluded from the returned list.
func (b *Backend) RemoveMany(ctx context.Context, keys []string) ([]string, error) {
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objects <- minio.ObjectInfo{Key: b.ns.Full(key)}
	}
	close(objects)

	var (
		result      *multierror.Error
		batchFailed bool
	)
	failed := make(map[string]struct{})
	for rerr := range b.api.RemoveObjects(ctx, b.bucket, objects, minio.RemoveObjectsOptions{}) {
		cause := rerr.Err
		if cause == nil {
			cause = fmt.Errorf("remove failed")
		}

		// An error without an object name failed the whole request.
		if rerr.ObjectName == "" {
			batchFailed = true
			result = multierror.Append(result,
				errors.NewError("deleteObjects", translate(cause)).WithBucket(b.bucket))
			continue
		}

		key := b.ns.Strip(rerr.ObjectName)
		failed[key] = struct{}{}
		result = multierror.Append(result,
			errors.NewObjectError("deleteObjects", b.bucket, key, translate(cause)))
	}

	deleted := make([]string, 0, len(keys))
	if batchFailed {
		return deleted, result.ErrorOrNil()
	}
	for _, key := range keys {
		if _, ok := failed[key]; !ok {
			deleted = append(deleted, key)
		}
	}
	return deleted, result.ErrorOrNil()
}
