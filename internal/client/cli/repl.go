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

// printFn prints the prompt without a trailing newline.
var printFn = fmt.Print

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Focus()
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
	Refresh(ctx context.Context) error
	Open(ctx context.Context, section string) error
	Back(ctx context.Context) error
	Unknown(ctx context.Context, cmd string)
}

// runREPL starts a simple read–eval–print loop for the gophadmin console.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Every command first sends a focus signal so
// the session is re-checked while the user is active. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help          : show available commands
//	  - login         : authenticate
//	  - status        : show session details
//	  - exit | quit   : leave the program
//
//	Logged in:
//	  - whoami        : show the verified profile
//	  - status        : show session details
//	  - refresh       : verify the session with the server now
//	  - users, content, finance, games, notifications: console sections
//	  - back          : return to the previous section
//	  - logout        : log out
//	  - exit | quit   : leave the program
//
// Errors returned by command handlers are ignored here; the reconciler and
// the handlers report them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(fmt.Sprintf("gophadmin %s> ", statusFn()))

		line, err := readCommand(ctx, reader)
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		a.Focus()

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: whoami, status, refresh, users, content, finance, games, notifications, back, logout, exit")
			} else {
				printlnFn("Available commands: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "status":
			_ = a.Status(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "back":
			_ = a.Back(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if _, ok := sections[cmd]; ok {
				_ = a.Open(ctx, cmd)
				continue
			}
			a.Unknown(ctx, cmd)
		}
	}
}

// readCommand reads one line but gives up when ctx is done, so a signal
// ends the session while the prompt waits. The abandoned read is left to
// die with the process.
func readCommand(ctx context.Context, reader *bufio.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}
