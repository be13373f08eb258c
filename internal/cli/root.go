package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.isUnlocked() {
		return "(unlocked)"
	}
	return "(locked)"
}

// Root runs the interactive command loop. It reads a line, parses the first
// token as the command, and dispatches to the handlers below. The loop exits
// on EOF or when the user types "exit" or "quit". Handler errors are printed
// by the handlers themselves; the loop stays resilient and focused on I/O.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to lockbox (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("lockbox %s > ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: get <name>, set <name> [value], delete <name>, list, exec <cmd> [args...], backup, restore <key>, lock, exit")

		case "get":
			a.Get(ctx, args)
		case "set":
			a.Set(ctx, args)
		case "delete":
			a.Delete(ctx, args)
		case "list":
			a.List(ctx)
		case "exec":
			a.Exec(ctx, args)
		case "backup":
			a.Backup(ctx)
		case "restore":
			a.Restore(ctx, args)
		case "lock":
			a.session.Lock()
			printlnFn("Vault locked")
		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
