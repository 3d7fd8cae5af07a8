// Package config loads drivesync configuration with koanf. Precedence is
// defaults < config file < environment, matching the usual expectation
// that the most local setting wins.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/paths"
	"github.com/drivesync/drivesync/pkg/retry"
	"github.com/drivesync/drivesync/pkg/sync"
)

//go:embed defaults.toml
var defaultConfig []byte

// envPrefix maps DRIVESYNC_RETRY__MAX_ATTEMPTS to retry.max_attempts.
const envPrefix = "DRIVESYNC_"

// Auth locates the OAuth client secrets and persisted token.
type Auth struct {
	CredentialsFile string `koanf:"credentials_file"`
	TokenFile       string `koanf:"token_file"`
}

// Drive holds remote store settings.
type Drive struct {
	ParentID string `koanf:"parent_id"`
	PageSize int64  `koanf:"page_size"`
}

// Sync holds reconciliation settings.
type Sync struct {
	ConflictPolicy string `koanf:"conflict_policy"`
}

// Retry holds the backoff parameters. Durations are seconds so the TOML
// stays plain numbers.
type Retry struct {
	MaxAttempts           int     `koanf:"max_attempts"`
	InitialBackoffSeconds float64 `koanf:"initial_backoff_seconds"`
	Multiplier            float64 `koanf:"multiplier"`
	MaxBackoffSeconds     float64 `koanf:"max_backoff_seconds"`
	Jitter                bool    `koanf:"jitter"`
}

// Logging holds log output settings.
type Logging struct {
	Format string `koanf:"format"`
}

// Config is the full drivesync configuration.
type Config struct {
	Auth    Auth    `koanf:"auth"`
	Drive   Drive   `koanf:"drive"`
	Sync    Sync    `koanf:"sync"`
	Retry   Retry   `koanf:"retry"`
	Logging Logging `koanf:"logging"`
}

// Load reads configuration from defaults, an optional config file in dir
// (drivesync.toml or .drivesync.toml), and the environment.
func Load(dir string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if dir == "" {
		dir = "."
	}
	for _, filename := range []string{".drivesync.toml", "drivesync.toml"} {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
			}
			break
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey translates an environment variable name into a koanf key:
// DRIVESYNC_RETRY__MAX_ATTEMPTS -> retry.max_attempts.
func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) validate() error {
	if _, err := sync.ParseConflictPolicy(c.Sync.ConflictPolicy); err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid,
			"sync.conflict_policy %q is invalid", c.Sync.ConflictPolicy)
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.Newf(errors.ErrConfigValid,
			"retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.InitialBackoffSeconds <= 0 || c.Retry.MaxBackoffSeconds <= 0 {
		return errors.New(errors.ErrConfigValid, "retry backoff values must be positive")
	}
	if c.Retry.Multiplier < 1 {
		return errors.Newf(errors.ErrConfigValid,
			"retry.multiplier must be at least 1, got %v", c.Retry.Multiplier)
	}
	if c.Drive.PageSize < 1 {
		return errors.Newf(errors.ErrConfigValid,
			"drive.page_size must be at least 1, got %d", c.Drive.PageSize)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.Newf(errors.ErrConfigValid,
			"logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// RetryPolicy converts the retry section into a policy with the standard
// permanent-failure classifier.
func (c *Config) RetryPolicy() retry.Policy {
	p := retry.Default()
	p.MaxAttempts = c.Retry.MaxAttempts
	p.InitialBackoff = time.Duration(c.Retry.InitialBackoffSeconds * float64(time.Second))
	p.Multiplier = c.Retry.Multiplier
	p.MaxBackoff = time.Duration(c.Retry.MaxBackoffSeconds * float64(time.Second))
	p.Jitter = c.Retry.Jitter
	return p
}

// CredentialsFile returns the configured path or the XDG default.
func (c *Config) CredentialsFile() string {
	return paths.CredentialsFile(c.Auth.CredentialsFile)
}

// TokenFile returns the configured path or the XDG default.
func (c *Config) TokenFile() string {
	return paths.TokenFile(c.Auth.TokenFile)
}
