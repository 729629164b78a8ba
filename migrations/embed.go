// Package migrations carries the service's schema as embedded SQL files,
// applied on startup before the store accepts traffic.
package migrations

import "embed"

// FS exposes the migration files to the iofs source driver.
//
//go:embed *.sql
var FS embed.FS
