// Package migrations embeds SQL migration files for the SQLite store.
package migrations

import "embed"

// FS contains the chunk, edge and match cache schema migrations.
//
//go:embed *.sql
var FS embed.FS
