package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
)

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := strings.TrimSpace(a.userName + " " + string(a.mode))
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores the saved session (or asks for credentials), starts the
// connectivity watcher and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to gophdocs CLI (type 'help' for commands)")

	email, err := a.authService.Restore(ctx)
	switch {
	case err == nil:
		a.setUser(email)
		printlnFn("Session restored for", email)
	case errors.Is(err, client.ErrLocalDataNotAvailable):
		report(a.Login(ctx))
	default:
		a.log.Warn(ctx, "failed to restore session", "error", err)
		report(a.Login(ctx))
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
