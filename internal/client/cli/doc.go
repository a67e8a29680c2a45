// Package cli provides the interactive gophadmin admin console.
//
// It wires configuration, the local credential database, the transport
// client and the auth reconciler behind a small REPL. While the REPL runs,
// background workers watch the credential file for changes made by other
// console processes, re-check the session periodically and track whether
// the server is reachable.
//
// Every command counts as user activity and triggers a session check.
// Guarded sections redirect to the login route while the user is logged out.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
