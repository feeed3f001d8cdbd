package migrations

import "embed"

// FS contains embedded SQLite migrations for arrangement storage.
//
//go:embed *.sql
var FS embed.FS
