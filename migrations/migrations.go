// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS holds one directory per database driver
//
//go:embed postgres/*.sql
var FS embed.FS
