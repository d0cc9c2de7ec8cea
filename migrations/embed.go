package migrations

import "embed"

// FS holds the versioned schema migrations for every supported backend.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
