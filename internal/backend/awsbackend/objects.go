package awsbackend

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hashicorp/go-multierror"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// maxDeleteBatch is the S3 limit of keys per DeleteObjects request.
const maxDeleteBatch = 1000

// maxListPage is the S3 limit of keys per ListObjectsV2 page.
const maxListPage = 1000

// Put uploads r through the transfer manager. The manager sends a single
// PutObject for bodies smaller than the part size and a parallel multipart
// upload otherwise, so size is informational only.
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, _ int64, opts storetypes.PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket:            aws.String(b.bucket),
		Key:               aws.String(b.ns.Full(key)),
		Body:              r,
		ChecksumAlgorithm: types.ChecksumAlgorithmCrc32,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.ContentDisposition != "" {
		input.ContentDisposition = aws.String(opts.ContentDisposition)
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return errors.NewObjectError("putObject", b.bucket, key, translate(err))
	}
	return nil
}

// Get opens the object body for streaming.
func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.ns.Full(key)),
	})
	if err != nil {
		return nil, errors.NewObjectError("getObject", b.bucket, key, translate(err))
	}
	return output.Body, nil
}

// Stat returns object metadata from HeadObject.
func (b *Backend) Stat(ctx context.Context, key string) (storetypes.ObjectInfo, error) {
	output, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.ns.Full(key)),
	})
	if err != nil {
		return storetypes.ObjectInfo{}, errors.NewObjectError("headObject", b.bucket, key, translate(err))
	}

	return storetypes.ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(output.ContentLength),
		ETag:         aws.ToString(output.ETag),
		ContentType:  aws.ToString(output.ContentType),
		LastModified: aws.ToTime(output.LastModified),
	}, nil
}

// List pages through ListObjectsV2 until MaxKeys entries are collected or
// the listing is exhausted. Object keys and common prefixes are merged in
// lexicographic order.
func (b *Backend) List(ctx context.Context, opts storetypes.ListOptions) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.ns.Full(opts.Prefix)),
	}
	if !opts.Recursive {
		input.Delimiter = aws.String("/")
	}
	if opts.StartAfter != "" {
		input.StartAfter = aws.String(b.ns.Full(opts.StartAfter))
	}
	if opts.MaxKeys > 0 && opts.MaxKeys < maxListPage {
		input.MaxKeys = aws.Int32(opts.MaxKeys)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(b.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.NewObjectError("listObjects", b.bucket, opts.Prefix, translate(err))
		}

		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		for _, p := range page.CommonPrefixes {
			keys = append(keys, aws.ToString(p.Prefix))
		}

		if opts.MaxKeys > 0 && len(keys) >= int(opts.MaxKeys) {
			break
		}
	}

	sort.Strings(keys)
	if opts.MaxKeys > 0 && len(keys) > int(opts.MaxKeys) {
		keys = keys[:opts.MaxKeys]
	}
	return b.ns.StripAll(keys), nil
}

// Remove deletes a single object.
func (b *Backend) Remove(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.ns.Full(key)),
	})
	if err != nil {
		return errors.NewObjectError("deleteObject", b.bucket, key, translate(err))
	}
	return nil
}

// RemoveMany deletes keys in batches of 1000. Failures of individual keys
// and whole batches are collected; the keys that were deleted are returned
// alongside the aggregated error.
func (b *Backend) RemoveMany(ctx context.Context, keys []string) ([]string, error) {
	var (
		deleted []string
		result  *multierror.Error
	)

	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))
		batch := keys[start:end]

		objects := make([]types.ObjectIdentifier, 0, len(batch))
		for _, key := range batch {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(b.ns.Full(key))})
		}

		output, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(false),
			},
		})
		if err != nil {
			result = multierror.Append(result, errors.NewError("deleteObjects", translate(err)).
				WithBucket(b.bucket).
				WithMessage(fmt.Sprintf("batch of %d keys starting at %q", len(batch), batch[0])))
			continue
		}

		for _, obj := range output.Deleted {
			deleted = append(deleted, b.ns.Strip(aws.ToString(obj.Key)))
		}
		for _, e := range output.Errors {
			cause := errors.Mark(errors.ErrProtocol,
				fmt.Errorf("%s: %s", aws.ToString(e.Code), aws.ToString(e.Message)))
			result = multierror.Append(result,
				errors.NewObjectError("deleteObjects", b.bucket, b.ns.Strip(aws.ToString(e.Key)), cause))
		}
	}

	return deleted, result.ErrorOrNil()
}
