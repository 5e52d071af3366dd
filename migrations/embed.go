// Package migrations embeds the SQL schema migrations so binaries and tests
// can apply them without a migrations directory on disk. Each supported
// database driver has its own directory holding the same versions.
package migrations

import "embed"

// FS holds the postgres/ and sqlite/ migration sets
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
