package migrations

import "embed"

// FS contains embedded SQLite migrations for call history storage.
//
//go:embed *.sql
var FS embed.FS
