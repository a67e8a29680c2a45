// Package models defines the client-side data model of the admin console's
// authentication layer: the persisted credential pair, the cached user
// profile, and the derived view consumed by the rest of the console.
package models
