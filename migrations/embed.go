// Package migrations embeds the ledger schema migrations so binaries can
// apply them without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
