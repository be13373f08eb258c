package cli

import (
	"context"
)

// Backup uploads the current vault file to the configured S3 bucket and
// prints the object key. The envelope is uploaded as-is; nothing is
// decrypted.
func (a *App) Backup(ctx context.Context) {
	if a.config.S3Bucket == "" {
		printlnFn("Backups are not configured (set s3_bucket)")
		return
	}

	b, err := a.newBackup(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return
	}

	key, err := b.Upload(ctx, a.config.VaultPath)
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	printlnFn("Backup uploaded:", key)
}

// Restore downloads the backup under args[0] to the vault path. It refuses
// to overwrite an existing vault file and locks the session first so no
// stale record survives a restore.
func (a *App) Restore(ctx context.Context, args []string) {
	if len(args) != 1 {
		printlnFn("Usage: restore <key>")
		return
	}
	if a.config.S3Bucket == "" {
		printlnFn("Backups are not configured (set s3_bucket)")
		return
	}

	b, err := a.newBackup(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return
	}

	a.session.Lock()

	if err := b.Download(ctx, args[0], a.config.VaultPath); err != nil {
		printlnFn("Error:", err)
		return
	}
	printlnFn("Backup restored to", a.config.VaultPath)
}
