package store

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/orion/internal/dbx"
	"github.com/dmitrijs2005/orion/internal/repositories/assets"
	"github.com/dmitrijs2005/orion/internal/repositories/publishes"
	"github.com/dmitrijs2005/orion/internal/repositories/shots"
)

// RepositoryManager vends repositories bound to a DBTX so that callers can
// choose between the pooled database and a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Shots(db dbx.DBTX) shots.Repository
	Assets(db dbx.DBTX) assets.Repository
	Publishes(db dbx.DBTX) publishes.Repository
}
