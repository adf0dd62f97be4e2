// Package migrations embeds the schema migrations. The files use goose
// annotations so they can also be applied with the goose CLI.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
