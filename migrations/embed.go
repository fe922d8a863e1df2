// Package migrations embeds the schema migration files so the binary can
// migrate the database it connects to without shipping the .sql files
// alongside it.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
