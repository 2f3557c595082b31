// Package config provides loading and validation of objectstore client
// configuration.
//
// Configuration is loaded from multiple sources with the following
// precedence (later sources override earlier ones):
//  1. Default values
//  2. A YAML configuration file
//  3. A .env file in the working directory
//  4. Environment variables with a configurable prefix
//
// # Usage Example
//
//	cfg, err := config.Load("OBJECTSTORE", "objectstore.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := objectstore.New(ctx, cfg)
//
// # Environment Variables
//
// Keys map to upper-case variables under the prefix:
//   - OBJECTSTORE_ENDPOINT=http://localhost:9000
//   - OBJECTSTORE_BUCKET=exports
//   - OBJECTSTORE_SUB_PATH=tenant-a
//   - OBJECTSTORE_AWS_SDK=true
//   - OBJECTSTORE_PART_SIZE=16MiB
package config

import (
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Defaults applied when a value is not configured.
const (
	DefaultRegion      = "us-east-1"
	DefaultPartSize    = 8 * 1024 * 1024
	DefaultConcurrency = 5
	DefaultPresignTTL  = storetypes.DefaultPresignTTL
)

// Config holds the connection and tuning settings of a storage client.
type Config struct {
	// Endpoint is the S3 endpoint URL. Required for MinIO; optional for AWS,
	// where an empty value selects the regional AWS endpoint.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=AWSSDK false"`

	// Region is the signing region.
	Region string `yaml:"region" mapstructure:"region" validate:"required"`

	// Bucket is the bucket all objects live in.
	Bucket string `yaml:"bucket" mapstructure:"bucket" validate:"required"`

	// SubPath is prepended to every object path and stripped from listings.
	SubPath string `yaml:"sub_path" mapstructure:"sub_path"`

	// AccessKey and SecretKey are static credentials. When either is blank
	// the SDK's ambient credential chain (environment, profile, IAM) is used.
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`

	// ForcePathStyle addresses buckets as endpoint/bucket instead of bucket.endpoint.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style"`

	// AWSSDK selects the AWS SDK backend. When false the MinIO backend is used.
	AWSSDK bool `yaml:"aws_sdk" mapstructure:"aws_sdk"`

	// PresignTTL is the lifetime of presigned URLs.
	PresignTTL time.Duration `yaml:"presign_ttl" mapstructure:"presign_ttl" validate:"gte=0"`

	// PartSize is the part size the AWS transfer manager splits writes into.
	PartSize int64 `yaml:"part_size" mapstructure:"part_size" validate:"omitempty,gte=5242880"`

	// Concurrency is the number of parts the AWS transfer manager uploads in parallel.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=0"`

	// TempDir is where temporary files are staged. Empty selects the OS default.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Region:      DefaultRegion,
		PresignTTL:  DefaultPresignTTL,
		PartSize:    DefaultPartSize,
		Concurrency: DefaultConcurrency,
	}
}

// HasStaticCredentials reports whether both static credential values are set.
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// EffectivePresignTTL returns PresignTTL, or the default when unset.
func (c *Config) EffectivePresignTTL() time.Duration {
	if c.PresignTTL > 0 {
		return c.PresignTTL
	}
	return DefaultPresignTTL
}

// SDKName names the selected backend family for logging.
func (c *Config) SDKName() string {
	if c.AWSSDK {
		return "aws"
	}
	return "minio"
}
