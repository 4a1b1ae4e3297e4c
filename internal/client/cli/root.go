package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(guest)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// Root runs the interactive session on stdin until exit or EOF.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintf(a.out, "Welcome to messagely CLI, server %s (type 'help' for commands)\n", a.config.ServerURL)
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
