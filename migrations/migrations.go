// Package migrations embeds the schema migrations for every supported
// dialect. Each dialect has its own directory of golang-migrate files.
package migrations

import "embed"

//go:embed sqlserver/*.sql postgres/*.sql sqlite/*.sql
var FS embed.FS
