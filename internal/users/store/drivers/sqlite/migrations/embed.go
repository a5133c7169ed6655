package migrations

import "embed"

// Migrations holds the SQL migration files compiled into the binary so a
// deployment never depends on files on disk.
//
//go:embed *.sql
var Migrations embed.FS
