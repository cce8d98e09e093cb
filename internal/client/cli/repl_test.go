package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) call(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.call("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.call("logout", nil)
}
func (f *fakeExec) Docs(ctx context.Context, args []string) error     { return f.call("docs", args) }
func (f *fakeExec) Versions(ctx context.Context, args []string) error { return f.call("versions", args) }
func (f *fakeExec) Validate(ctx context.Context, args []string) error { return f.call("validate", args) }
func (f *fakeExec) Download(ctx context.Context, args []string) error { return f.call("download", args) }
func (f *fakeExec) Toggle(ctx context.Context, args []string) error   { return f.call("toggle", args) }
func (f *fakeExec) Approve(ctx context.Context, args []string) error  { return f.call("approve", args) }
func (f *fakeExec) Retry(ctx context.Context, args []string) error    { return f.call("retry", args) }
func (f *fakeExec) Reject(ctx context.Context, args []string) error   { return f.call("reject", args) }
func (f *fakeExec) Archive(ctx context.Context, args []string) error  { return f.call("archive", args) }
func (f *fakeExec) DeleteVersion(ctx context.Context, args []string) error {
	return f.call("delete", args)
}
func (f *fakeExec) Compare(ctx context.Context, args []string) error { return f.call("compare", args) }
func (f *fakeExec) Upload(ctx context.Context, args []string) error  { return f.call("upload", args) }
func (f *fakeExec) Departments(ctx context.Context) error             { return f.call("departments", nil) }
func (f *fakeExec) Tags(ctx context.Context) error                    { return f.call("tags", nil) }

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	lines := silencePrintln(t)

	input := readerFromLines(
		"docs",
		"login",
		"",
		"docs status=DRAFT contract",
		"versions D",
		"validate D v2",
		"view D 2",
		"download D latest",
		"toggle D v2 on",
		"approve D",
		"retry",
		"reject D v2",
		"archive D v1",
		"delete D v1",
		"compare D v1 v2",
		"upload D ./a.pdf",
		"departments",
		"tags",
		"logout",
		"exit",
		"docs",
	)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, input)

	require.Equal(t, []string{
		"login", "docs", "versions", "validate", "download", "download", "toggle", "approve", "retry",
		"reject", "archive", "delete", "compare", "upload", "departments", "tags", "logout",
	}, exec.calls)
	require.Equal(t, []string{"status=DRAFT", "contract"}, exec.args[1])
	require.Equal(t, []string{"D", "v2", "on"}, exec.args[6])

	require.Contains(t, *lines, "Please login first")
	require.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, readerFromLines("help", "login", "help", "quit"))

	require.Contains(t, *lines, helpLoggedOut)
	require.Contains(t, *lines, helpLoggedIn)
	require.Contains(t, *lines, "gd status> ")
}

func TestRunREPL_UnknownCommandAndErrors(t *testing.T) {
	lines := silencePrintln(t)

	exec := &fakeExec{loggedIn: true, err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" }, readerFromLines("frobnicate", "docs", "exit"))

	require.Contains(t, *lines, "Unknown command: frobnicate")
	require.Contains(t, *lines, "error: boom")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("versions D")))

	require.Equal(t, []string{"versions"}, exec.calls)
	require.Equal(t, []string{"D"}, exec.args[0])
}
