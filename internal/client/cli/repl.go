package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Docs(ctx context.Context, args []string) error
	Versions(ctx context.Context, args []string) error
	Validate(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Toggle(ctx context.Context, args []string) error
	Approve(ctx context.Context, args []string) error
	Retry(ctx context.Context, args []string) error
	Reject(ctx context.Context, args []string) error
	Archive(ctx context.Context, args []string) error
	DeleteVersion(ctx context.Context, args []string) error
	Compare(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Departments(ctx context.Context) error
	Tags(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = `Available commands:
  docs [status=S] [dept=ID] [tag=ID] [page=N] [text]   list documents
  versions <doc>                                        version timeline, newest first
  validate <doc> <ver>                                  integrity check
  view|download <doc> <ver>                             validate, then save the file
  toggle <doc> <ver> on|off                             submit for approval / back to draft
  approve <doc>                                         approve with a signature stamp
  retry [doc]                                           finish approvals whose status update failed
  reject <doc> <ver>, archive <doc> <ver>
  delete <doc> <ver>, compare <doc> <ver> <ver>
  upload <doc> <path>                                   add a new version
  departments, tags, logout, exit
Versions are given as v2, 2, latest or a version id.`
)

// runREPL starts a simple read-eval-print loop for the gophdocs CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit". Commands other than help, login and
// exit require a session.
//
// Errors returned by command handlers are printed and otherwise ignored.
// This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gd %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "login":
			report(a.Login(ctx))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "logout":
			report(a.Logout(ctx))
		case "docs", "ls":
			report(a.Docs(ctx, args))
		case "versions", "timeline":
			report(a.Versions(ctx, args))
		case "validate":
			report(a.Validate(ctx, args))
		case "view", "download":
			report(a.Download(ctx, args))
		case "toggle":
			report(a.Toggle(ctx, args))
		case "approve":
			report(a.Approve(ctx, args))
		case "retry":
			report(a.Retry(ctx, args))
		case "reject":
			report(a.Reject(ctx, args))
		case "archive":
			report(a.Archive(ctx, args))
		case "delete":
			report(a.DeleteVersion(ctx, args))
		case "compare":
			report(a.Compare(ctx, args))
		case "upload":
			report(a.Upload(ctx, args))
		case "departments":
			report(a.Departments(ctx))
		case "tags":
			report(a.Tags(ctx))
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("error:", err)
	}
}
