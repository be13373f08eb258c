package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/lockbox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   path to the vault file (default from Config)
//	-t int      relock timeout in seconds (default from Config)
//	-b string   S3 bucket for backups (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-t", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.VaultPath, "f", cfg.VaultPath, "path to the vault file")
	relockTimeout := fs.Int("t", int(cfg.RelockTimeout.Seconds()), "relock timeout (in seconds)")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for vault backups")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RelockTimeout = time.Duration(*relockTimeout) * time.Second
}
