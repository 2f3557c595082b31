package objectstore

import (
	"context"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/config"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/appender"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend/awsbackend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/backend/miniobackend"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/multipart"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/presign"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/staging"
)

// Client is a storage client bound to one bucket.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	backend  backend.Backend
	stager   *staging.Stager
	appender *appender.Appender
	session  *multipart.Session
	issuer   *presign.Issuer
	logger   *slog.Logger
	fs       fs.Filesystem
}

// New creates a Client from configuration. The configuration is validated
// and the backend is chosen once: the AWS SDK when cfg.AWSSDK is set,
// MinIO otherwise.
//
// Example:
//
//	client, err := objectstore.New(ctx, cfg,
//	    objectstore.WithLogger(slog.Default()),
//	    objectstore.WithBucketCreation(),
//	)
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(clientOptions{
		tempDir:    cfg.TempDir,
		presignTTL: cfg.EffectivePresignTTL(),
	}, opts)
	stager := staging.New(o.fs, o.tempDir)

	var (
		b   backend.Backend
		err error
	)
	if cfg.AWSSDK {
		b, err = awsbackend.New(ctx, cfg)
	} else {
		b, err = miniobackend.New(cfg, stager)
	}
	if err != nil {
		o.logger.Error("failed to create storage backend", "sdk", cfg.SDKName(), "error", err)
		return nil, err
	}

	o.logger.Info("object storage client created",
		"sdk", cfg.SDKName(),
		"endpoint", cfg.Endpoint,
		"region", cfg.Region,
		"bucket", cfg.Bucket,
		"sub_path", cfg.SubPath,
		"access_key", credentialState(cfg.AccessKey),
		"secret_key", credentialState(cfg.SecretKey))

	client := newClient(b, stager, o)
	if o.createBucket {
		if err := client.CreateBucketIfNotExists(ctx); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// NewWithBackend creates a Client over an existing backend.
// This is primarily used for testing with fake backends.
func NewWithBackend(b backend.Backend, opts ...Option) *Client {
	o := applyOptions(clientOptions{}, opts)
	return newClient(b, staging.New(o.fs, o.tempDir), o)
}

func newClient(b backend.Backend, stager *staging.Stager, o clientOptions) *Client {
	issuer := presign.New(b, o.presignTTL)
	return &Client{
		backend:  b,
		stager:   stager,
		appender: appender.New(b, stager, o.logger),
		session:  multipart.New(b, issuer, o.logger),
		issuer:   issuer,
		logger:   o.logger,
		fs:       o.fs,
	}
}

// Bucket returns the bucket the client operates on.
func (c *Client) Bucket() string {
	return c.backend.Bucket()
}

// CreateBucketIfNotExists creates the configured bucket when it is missing.
// An existing bucket owned by the caller is not an error.
func (c *Client) CreateBucketIfNotExists(ctx context.Context) error {
	if err := c.backend.EnsureBucket(ctx); err != nil {
		c.logger.Error("failed to ensure bucket", "bucket", c.backend.Bucket(), "error", err)
		return err
	}
	return nil
}

func credentialState(value string) string {
	if value == "" {
		return "<not set>"
	}
	return "<set>"
}
