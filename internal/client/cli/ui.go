package cli

import (
	"fmt"
	"io"
	"sync"
)

// Notifier prints toast-style messages.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) Success(msg string) { n.print("✓", msg) }
func (n *Notifier) Error(msg string)   { n.print("✗", msg) }

func (n *Notifier) print(mark, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", mark, msg)
}

// Navigator tracks the console's current route. The console has no pages;
// the route only drives the prompt and the route guard.
type Navigator struct {
	mu      sync.Mutex
	w       io.Writer
	current string
	history []string
}

func NewNavigator(w io.Writer, start string) *Navigator {
	return &Navigator{w: w, current: start}
}

// Replace moves to path without keeping the current route in history.
func (n *Navigator) Replace(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.moveTo(path)
}

// Push moves to path and remembers the route it left.
func (n *Navigator) Push(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = append(n.history, n.current)
	n.moveTo(path)
}

func (n *Navigator) moveTo(path string) {
	if path == n.current {
		return
	}
	n.current = path
	fmt.Fprintf(n.w, "→ %s\n", path)
}

// reset sets the route silently; used before the REPL starts.
func (n *Navigator) reset(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Back returns to the previous pushed route, if any.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		return false
	}
	prev := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	n.moveTo(prev)
	return true
}
