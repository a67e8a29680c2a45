// Package credentials is the console's credential store: the access/refresh
// token pair persisted in the shared local database, plus change
// notifications for the current process (Set/Clear) and for other console
// processes writing the same file (Watcher).
//
// Every write also stores a revision marker "<origin>/<nonce>". The watcher
// compares markers instead of raw file events, so writes to unrelated keys
// (such as the session cache) never look like a credential change.
package credentials
