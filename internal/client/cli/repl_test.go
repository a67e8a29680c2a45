package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	focus    int
}

func (f *fakeExec) Focus()                          { f.focus++ }
func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Login(context.Context) error     { f.calls = append(f.calls, "login"); return nil }
func (f *fakeExec) Logout(context.Context) error    { f.calls = append(f.calls, "logout"); return nil }
func (f *fakeExec) Whoami(context.Context) error    { f.calls = append(f.calls, "whoami"); return nil }
func (f *fakeExec) Status(context.Context) error    { f.calls = append(f.calls, "status"); return nil }
func (f *fakeExec) Refresh(context.Context) error   { f.calls = append(f.calls, "refresh"); return nil }
func (f *fakeExec) Back(context.Context) error      { f.calls = append(f.calls, "back"); return nil }

func (f *fakeExec) Open(_ context.Context, section string) error {
	f.calls = append(f.calls, "open:"+section)
	return nil
}

func (f *fakeExec) Unknown(_ context.Context, cmd string) {
	f.calls = append(f.calls, "unknown:"+cmd)
}

// captureOutput swaps the print seams for the duration of the test.
func captureOutput(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	oldPrintln, oldPrint := printlnFn, printFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&sb, a...) }
	printFn = func(a ...any) (int, error) { return fmt.Fprint(&sb, a...) }
	t.Cleanup(func() { printlnFn, printFn = oldPrintln, oldPrint })
	return &sb
}

func runScript(t *testing.T, f *fakeExec, script string) string {
	t.Helper()
	out := captureOutput(t)
	runREPL(context.Background(), f, func() string { return "(test)" }, bufio.NewReader(strings.NewReader(script)))
	return out.String()
}

func TestREPL_DispatchesCommands(t *testing.T) {
	f := &fakeExec{loggedIn: true}
	out := runScript(t, f, "login\nwhoami\nstatus\nrefresh\nusers\nback\nfrobnicate now\nlogout\nexit\nwhoami\n")

	require.Equal(t, []string{
		"login", "whoami", "status", "refresh", "open:users", "back", "unknown:frobnicate", "logout",
	}, f.calls)
	require.Contains(t, out, "Bye!")
	require.Contains(t, out, "gophadmin (test)> ")
}

func TestREPL_FocusOnEveryCommand(t *testing.T) {
	f := &fakeExec{}
	runScript(t, f, "status\n\n   \nstatus\nquit\n")
	// blank lines are not activity
	require.Equal(t, 3, f.focus)
}

func TestREPL_HelpDependsOnLogin(t *testing.T) {
	out := runScript(t, &fakeExec{}, "help\n")
	require.Contains(t, out, "login, status, exit")
	require.NotContains(t, out, "logout")

	out = runScript(t, &fakeExec{loggedIn: true}, "help\n")
	require.Contains(t, out, "whoami")
	require.Contains(t, out, "logout")
}

func TestREPL_EOFStops(t *testing.T) {
	f := &fakeExec{}
	runScript(t, f, "status")
	require.Equal(t, []string{"status"}, f.calls)
}

func TestREPL_CancelledContextStops(t *testing.T) {
	captureOutput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeExec{}
	runREPL(ctx, f, func() string { return "" }, bufio.NewReader(strings.NewReader("status\n")))
	require.Empty(t, f.calls)
}

func TestREPL_SignalWhileWaitingForInput(t *testing.T) {
	captureOutput(t)
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	f := &fakeExec{}
	go func() {
		runREPL(ctx, f, func() string { return "" }, bufio.NewReader(pr))
		close(done)
	}()

	// nothing is ever typed; cancelling must still end the session
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("REPL kept waiting for input after cancel")
	}
	require.Empty(t, f.calls)
}
