// Package migrations embeds the SQL schema so every service binary can
// apply it at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dir is the path passed to the iofs migration source.
const Dir = "."
