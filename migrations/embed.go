// Package migrations embeds the SQL schema migrations so the binary can run
// them with goose at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
