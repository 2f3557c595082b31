package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Loader provides configuration loading functionality.
type Loader struct {
	v      *viper.Viper
	prefix string
}

// NewLoader creates a new configuration loader with the given environment prefix.
// The prefix is used for environment variables (e.g., "OBJECTSTORE" -> "OBJECTSTORE_BUCKET").
func NewLoader(envPrefix string) *Loader {
	l := &Loader{
		v:      viper.New(),
		prefix: envPrefix,
	}
	l.setDefaults()
	return l
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal.
func (l *Loader) setDefaults() {
	l.v.SetDefault("endpoint", "")
	l.v.SetDefault("region", DefaultRegion)
	l.v.SetDefault("bucket", "")
	l.v.SetDefault("sub_path", "")
	l.v.SetDefault("access_key", "")
	l.v.SetDefault("secret_key", "")
	l.v.SetDefault("force_path_style", false)
	l.v.SetDefault("aws_sdk", false)
	l.v.SetDefault("presign_ttl", DefaultPresignTTL.String())
	l.v.SetDefault("part_size", DefaultPartSize)
	l.v.SetDefault("concurrency", DefaultConcurrency)
	l.v.SetDefault("temp_dir", "")
}

// SetFs sets the filesystem the configuration file and .env are read from.
// Default is the OS filesystem.
func (l *Loader) SetFs(fs afero.Fs) {
	if fs != nil {
		l.v.SetFs(fs)
	}
}

// Set overrides a single key. Overrides take precedence over every other source.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load reads configuration from file, .env, and environment variables.
// If cfgFile is empty, searches for objectstore.yaml in the working directory
// and ./configs.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (with prefix)
//  2. .env file
//  3. Configuration file
//  4. Default values
func (l *Loader) Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		l.v.SetConfigFile(cfgFile)
	} else {
		l.v.SetConfigName("objectstore")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("./configs")
	}

	if err := l.v.ReadInConfig(); err != nil {
		// An explicit file must exist; auto-discovery may find nothing.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Merge .env file if present
	l.v.SetConfigFile(".env")
	l.v.SetConfigType("env")
	_ = l.v.MergeInConfig()

	if l.prefix != "" {
		l.v.SetEnvPrefix(l.prefix)
	}
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// part_size accepts human-readable sizes such as "16MiB".
	if raw := l.v.GetString("part_size"); raw != "" {
		n, err := humanize.ParseBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid part_size %q: %w", raw, err)
		}
		l.v.Set("part_size", int64(n))
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return cfg, nil
}

// Load is a convenience function that loads and validates configuration
// with standard defaults.
func Load(envPrefix, cfgFile string) (*Config, error) {
	cfg, err := NewLoader(envPrefix).Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
