package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if a.userEmail != "" {
		s = a.userEmail + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s) ", s)
	}
	return s
}

// Root runs the interactive loop. It blocks until the user exits or stdin
// closes.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to allerlog CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
