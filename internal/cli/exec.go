package cli

import (
	"context"
	"os"
	"os/exec"
)

// Exec runs a child process with every secret exported into its environment
// as NAME=value, on top of the parent environment. The child inherits
// stdin/stdout/stderr so interactive programs keep working.
func (a *App) Exec(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: exec <cmd> [args...]")
		return
	}

	record, err := a.session.Unlock(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return
	}

	env := os.Environ()
	for name, value := range record {
		env = append(env, name+"="+value)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printlnFn("Error:", err)
	}
}
