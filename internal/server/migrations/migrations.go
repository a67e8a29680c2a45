// Package migrations embeds the goose SQL migrations of the development
// server's database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
