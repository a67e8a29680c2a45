// Package auth reconciles the console's view of "who is logged in" from three
// sources: the credential pair in the local store, the cached user profile,
// and the outcome of verifying that profile against the server.
//
// A Reconciler is an actor. Run owns a mailbox and applies login, logout,
// verification results and re-check triggers one at a time, in arrival
// order. Profile verification itself runs outside the actor; its result is
// applied only if no login or logout happened meanwhile and credentials are
// still present at apply time.
package auth
