package migrations

import "embed"

// FS contains embedded Postgres migrations for string storage.
//
//go:embed *.sql
var FS embed.FS
