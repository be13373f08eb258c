// Package config loads runtime settings for the lockbox CLI from defaults,
// an optional JSON file, and command-line flags, in that order of precedence.
package config

import (
	"time"
)

// Config holds runtime settings for the lockbox CLI.
//
// Fields:
//   - VaultPath: location of the encrypted vault file.
//   - RelockTimeout: idle duration after which an unlocked session relocks.
//   - S3Bucket, S3Prefix: optional remote backup target; backup commands are
//     disabled when S3Bucket is empty. Credentials and region come from the
//     standard AWS environment/config chain.
type Config struct {
	VaultPath     string
	RelockTimeout time.Duration
	S3Bucket      string
	S3Prefix      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.VaultPath = "lockbox.vault"
	c.RelockTimeout = 5 * time.Minute
	c.S3Prefix = "lockbox/"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
