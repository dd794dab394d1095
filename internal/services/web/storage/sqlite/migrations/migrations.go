// Package migrations embeds the SQLite schema for the web credential store.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
