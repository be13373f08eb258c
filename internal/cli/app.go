package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/lockbox/internal/backup"
	"github.com/dmitrijs2005/lockbox/internal/config"
	"github.com/dmitrijs2005/lockbox/internal/logging"
	"github.com/dmitrijs2005/lockbox/internal/vault"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = func(a ...any) { _, _ = fmt.Println(a...) }

// App wires the vault session to the terminal. It implements the session's
// PasswordPrompter and Notifier collaborator interfaces itself.
type App struct {
	config  *config.Config
	session *vault.Session
	logger  logging.Logger
	reader  *bufio.Reader

	// newBackup is a test seam; the default builds a real S3 client.
	newBackup func(ctx context.Context) (remoteBackup, error)
}

// remoteBackup is the slice of backup.S3Backup the CLI needs.
type remoteBackup interface {
	Upload(ctx context.Context, vaultPath string) (string, error)
	Download(ctx context.Context, key, vaultPath string) error
}

// NewApp builds the CLI application around a fresh locked session.
func NewApp(c *config.Config) *App {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
	}
	app.session = vault.NewSession(vault.NewStore(c.VaultPath), app, c.RelockTimeout, app, logger)
	app.newBackup = func(ctx context.Context) (remoteBackup, error) {
		return backup.NewS3Backup(ctx, c.S3Bucket, c.S3Prefix)
	}
	return app
}

// PromptPassword reads a password from the terminal without echo.
func (a *App) PromptPassword(prompt string) ([]byte, error) {
	return GetPassword(prompt, os.Stdout)
}

// Notify prints an informational message for the user.
func (a *App) Notify(msg string) {
	printlnFn(msg)
}

func (a *App) isUnlocked() bool {
	return a.session.Unlocked()
}

// Run starts the interactive shell and blocks until the user exits. The
// session is locked on the way out so the cached password never survives
// the process's interactive phase.
func (a *App) Run(ctx context.Context) {
	defer a.session.Lock()
	a.Root(ctx)
}
