// Package shots provides the persistence layer for shot rows.
//
// The Repository interface is implemented by SQLiteRepository over a
// dbx.DBTX, so the same code runs against *sql.DB or inside a
// transaction started with dbx.WithTx. Code renames touch the shot_assets
// join table too and should run in a transaction.
//
// Lookups that match no row return common.ErrorNotFound; inserts that hit
// the UNIQUE(code) constraint return common.ErrorAlreadyExists.
package shots
