// Package awsbackend implements the storage backend on the AWS SDK for Go v2.
//
// Writes of any size go through the feature/s3/manager Uploader, which
// splits large or unknown-length bodies into parallel parts and attaches a
// CRC32 checksum. Multipart primitives and presigning call the S3 API
// directly.
package awsbackend

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/config"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/keyspace"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Name identifies this backend in capabilities and logs.
const Name = "aws"

// Backend is the AWS SDK implementation of backend.Backend.
type Backend struct {
	client    S3API
	presigner PresignAPI
	uploader  *manager.Uploader
	bucket    string
	region    string
	ns        keyspace.Namespace
}

var _ backend.Backend = (*Backend)(nil)

// Options tunes a Backend built with NewWithClient.
type Options struct {
	Bucket      string
	Region      string
	SubPath     string
	PartSize    int64
	Concurrency int
}

// New creates a Backend from configuration.
// Static credentials are used when both keys are set; otherwise the SDK's
// default credential chain resolves them.
func New(ctx context.Context, cfg *config.Config) (*Backend, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.HasStaticCredentials() {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// S3-compatible endpoints do not all accept the SDK's default
			// flexible checksums on every request.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	})

	return NewWithClient(client, s3.NewPresignClient(client), Options{
		Bucket:      cfg.Bucket,
		Region:      cfg.Region,
		SubPath:     cfg.SubPath,
		PartSize:    cfg.PartSize,
		Concurrency: cfg.Concurrency,
	}), nil
}

// NewWithClient creates a Backend over an existing S3 client and presigner.
// This is primarily used for testing with mocked clients.
func NewWithClient(client S3API, presigner PresignAPI, opts Options) *Backend {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if opts.PartSize > 0 {
			u.PartSize = opts.PartSize
		}
		if opts.Concurrency > 0 {
			u.Concurrency = opts.Concurrency
		}
	})

	return &Backend{
		client:    client,
		presigner: presigner,
		uploader:  uploader,
		bucket:    opts.Bucket,
		region:    opts.Region,
		ns:        keyspace.New(opts.SubPath),
	}
}

// Capabilities reports sized streaming with CRC32 checksums.
func (b *Backend) Capabilities() backend.Capabilities {
	return backend.Capabilities{
		Name:              Name,
		SizedStreaming:    true,
		ChecksumAlgorithm: string(types.ChecksumAlgorithmCrc32),
		MinMultipartSize:  storetypes.MinMultipartSize,
		MaxPartNumber:     storetypes.MaxPartNumber,
	}
}

// Bucket returns the configured bucket name.
func (b *Backend) Bucket() string {
	return b.bucket
}

// EnsureBucket creates the bucket if HeadBucket reports it missing.
func (b *Backend) EnsureBucket(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err == nil {
		return nil
	}
	if !isBucketMissing(err) {
		return errors.NewError("headBucket", translate(err)).WithBucket(b.bucket)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(b.bucket)}
	// us-east-1 rejects an explicit location constraint
	if b.region != "" && b.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.region),
		}
	}

	if _, err := b.client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return errors.NewError("createBucket", translate(err)).WithBucket(b.bucket)
	}
	return nil
}
