package sqlite

import "embed"

// Migrations holds the SQLite schema migrations under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS
