package objectstore

import (
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	logger       *slog.Logger
	fs           fs.Filesystem
	tempDir      string
	presignTTL   time.Duration
	createBucket bool
}

// WithLogger sets the logger used by the client.
// By default all output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFilesystem sets the filesystem local files are read from in Upload
// and UploadMultipartPart. Temporary files for staged streams and
// RemoteStorageWriter are created on it too.
// Default is the OS filesystem rooted at /.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(o *clientOptions) {
		if filesystem != nil {
			o.fs = filesystem
		}
	}
}

// WithTempDir sets the directory temporary files are created in.
// It overrides config.Config.TempDir.
func WithTempDir(dir string) Option {
	return func(o *clientOptions) {
		o.tempDir = dir
	}
}

// WithPresignTTL sets the default lifetime of presigned URLs.
// It overrides config.Config.PresignTTL.
func WithPresignTTL(ttl time.Duration) Option {
	return func(o *clientOptions) {
		if ttl > 0 {
			o.presignTTL = ttl
		}
	}
}

// WithBucketCreation makes New create the configured bucket if it does not
// exist.
func WithBucketCreation() Option {
	return func(o *clientOptions) {
		o.createBucket = true
	}
}

func applyOptions(base clientOptions, opts []Option) clientOptions {
	for _, opt := range opts {
		opt(&base)
	}
	if base.logger == nil {
		base.logger = slog.New(slog.DiscardHandler)
	}
	if base.fs == nil {
		base.fs = billy.NewOSFS("/")
	}
	return base
}
