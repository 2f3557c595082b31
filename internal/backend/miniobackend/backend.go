// Package miniobackend implements the storage backend on minio-go.
//
// MinIO writes are single requests with a known length: streams of unknown
// size are first staged to a temporary file. No checksum is attached.
package miniobackend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/config"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/keyspace"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/staging"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Name identifies this backend in capabilities and logs.
const Name = "minio"

// Backend is the MinIO implementation of backend.Backend.
type Backend struct {
	api    API
	stager *staging.Stager
	bucket string
	region string
	ns     keyspace.Namespace
}

var _ backend.Backend = (*Backend)(nil)

// Options configures a Backend built with NewWithAPI.
type Options struct {
	Bucket  string
	Region  string
	SubPath string
}

// New creates a Backend from configuration. Static credentials are used when
// both keys are set; otherwise credentials come from the IAM metadata service.
func New(cfg *config.Config, stager *staging.Stager) (*Backend, error) {
	host, secure, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	creds := credentials.NewIAM("")
	if cfg.HasStaticCredentials() {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	opts := &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.ForcePathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	core, err := minio.NewCore(host, opts)
	if err != nil {
		return nil, errors.NewError("client initialization", errors.Mark(errors.ErrInvalidInput, err))
	}

	return NewWithAPI(coreClient{Core: core}, stager, Options{
		Bucket:  cfg.Bucket,
		Region:  cfg.Region,
		SubPath: cfg.SubPath,
	}), nil
}

// NewWithAPI creates a Backend over an existing MinIO API.
// This is primarily used for testing with mocked clients.
func NewWithAPI(api API, stager *staging.Stager, opts Options) *Backend {
	if stager == nil {
		stager = staging.New(nil, "")
	}
	return &Backend{
		api:    api,
		stager: stager,
		bucket: opts.Bucket,
		region: opts.Region,
		ns:     keyspace.New(opts.SubPath),
	}
}

// parseEndpoint splits an endpoint URL into the host MinIO dials and whether
// TLS is used. A bare host defaults to TLS.
func parseEndpoint(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		if endpoint == "" {
			return "", false, errors.Mark(errors.ErrInvalidInput, fmt.Errorf("endpoint is required"))
		}
		return strings.TrimSuffix(endpoint, "/"), true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, errors.Mark(errors.ErrInvalidInput, fmt.Errorf("parse endpoint: %w", err))
	}
	if u.Host == "" {
		return "", false, errors.Mark(errors.ErrInvalidInput, fmt.Errorf("endpoint %q has no host", endpoint))
	}
	return u.Host, u.Scheme == "https", nil
}

// Capabilities reports single-request writes without checksums.
func (b *Backend) Capabilities() backend.Capabilities {
	return backend.Capabilities{
		Name:             Name,
		SizedStreaming:   false,
		MinMultipartSize: storetypes.MinMultipartSize,
		MaxPartNumber:    storetypes.MaxPartNumber,
	}
}

// Bucket returns the configured bucket name.
func (b *Backend) Bucket() string {
	return b.bucket
}

// EnsureBucket creates the bucket if it does not exist.
func (b *Backend) EnsureBucket(ctx context.Context) error {
	exists, err := b.api.BucketExists(ctx, b.bucket)
	if err != nil {
		return errors.NewError("headBucket", translate(err)).WithBucket(b.bucket)
	}
	if exists {
		return nil
	}

	err = b.api.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{Region: b.region})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return errors.NewError("createBucket", translate(err)).WithBucket(b.bucket)
	}
	return nil
}
