package cli

import (
	"context"
	"os"
)

// Get prints the secret stored under args[0]. Absence is reported
// explicitly; an empty string value prints as an empty line.
func (a *App) Get(ctx context.Context, args []string) {
	if len(args) != 1 {
		printlnFn("Usage: get <name>")
		return
	}

	value, ok, err := a.session.GetItem(ctx, args[0])
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	if !ok {
		printlnFn("No such secret:", args[0])
		return
	}
	printlnFn(value)
}

// Set stores a secret. The value can be given inline or, when omitted,
// is read interactively so it stays out of the shell history.
func (a *App) Set(ctx context.Context, args []string) {
	if len(args) != 1 && len(args) != 2 {
		printlnFn("Usage: set <name> [value]")
		return
	}

	name := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		v, err := GetSimpleText(a.reader, "Enter value for "+name, os.Stdout)
		if err != nil {
			printlnFn("Error:", err)
			return
		}
		value = v
	}

	if err := a.session.SetItem(ctx, name, value); err != nil {
		printlnFn("Error:", err)
		return
	}
	printlnFn("Saved", name)
}

// Delete removes a secret by name.
func (a *App) Delete(ctx context.Context, args []string) {
	if len(args) != 1 {
		printlnFn("Usage: delete <name>")
		return
	}

	if err := a.session.DeleteItem(ctx, args[0]); err != nil {
		printlnFn("Error:", err)
		return
	}
	printlnFn("Deleted", args[0])
}

// List prints the stored secret names, one per line.
func (a *App) List(ctx context.Context) {
	names, err := a.session.Items(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	if len(names) == 0 {
		printlnFn("Vault is empty")
		return
	}
	for _, name := range names {
		printlnFn(name)
	}
}
