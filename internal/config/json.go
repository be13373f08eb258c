package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/lockbox/internal/flagx"
	"github.com/dmitrijs2005/lockbox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the relock timeout either
// as a string like "5m" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	VaultPath     string         `json:"vault_path"`
	RelockTimeout timex.Duration `json:"relock_timeout"`
	S3Bucket      string         `json:"s3_bucket"`
	S3Prefix      string         `json:"s3_prefix"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only fields present in the file override the current Config values, so a
// partial config file keeps the defaults for everything it omits.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.VaultPath != "" {
		cfg.VaultPath = jc.VaultPath
	}
	if jc.RelockTimeout.Duration != 0 {
		cfg.RelockTimeout = time.Duration(jc.RelockTimeout.Duration)
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Prefix != "" {
		cfg.S3Prefix = jc.S3Prefix
	}
}
