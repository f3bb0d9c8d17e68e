// Package store opens the project SQLite database, brings its schema up to
// date with goose and vends repositories bound to either the database or a
// transaction.
//
// One *sql.DB is shared by the whole process and limited to a single open
// connection, which matches SQLite's single-writer model on a shared drive.
package store
