// Package client contains the console's transport to the admin auth API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Login, GetProfile, Logout, Ping.
//  2. A gRPC implementation (GRPCClient) that exchanges
//     google.protobuf.Struct messages, injects the stored access token via an
//     interceptor, and transparently refreshes expired tokens.
//  3. A REST implementation (HTTPClient) with the same behaviour over JSON.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// Tokens never live in the client itself: they are read from and written to
// a TokenStore (the console's credential store) on every call. A successful
// Login therefore leaves the credential pair persisted as a side effect.
//
// # Error Handling
//
// Wire errors are mapped at this boundary to sentinel errors that callers
// match with errors.Is: ErrUnauthorized (the server rejected the
// credentials) and ErrUnavailable (network or server trouble).
package client
