// Package migrations embeds the versioned schema for every supported SQL dialect.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per driver name.
//
//go:embed mysql/*.sql sqlite3/*.sql
var FS embed.FS
