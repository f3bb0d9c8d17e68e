// Package migrations holds the goose migrations for the project database.
//
// SQL migrations are embedded; Go migrations register themselves with
// goose from init functions in this package.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
