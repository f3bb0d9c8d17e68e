package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/dbx"
	"github.com/dmitrijs2005/orion/internal/logging"
	"github.com/dmitrijs2005/orion/internal/migrations"
	"github.com/dmitrijs2005/orion/internal/repositories/assets"
	"github.com/dmitrijs2005/orion/internal/repositories/publishes"
	"github.com/dmitrijs2005/orion/internal/repositories/shots"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations
// and exposes a schema migration hook.
type SQLiteRepositoryManager struct {
	log logging.Logger
}

func NewSQLiteRepositoryManager(log logging.Logger) *SQLiteRepositoryManager {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLiteRepositoryManager{log: log}
}

func (m *SQLiteRepositoryManager) Shots(db dbx.DBTX) shots.Repository {
	return shots.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Assets(db dbx.DBTX) assets.Repository {
	return assets.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Publishes(db dbx.DBTX) publishes.Repository {
	return publishes.NewSQLiteRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations. Databases written by older
// tools (tables present, no goose version table) are upgraded in place.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(&gooseLogger{ctx: ctx, log: m.log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// Open opens the database file at path and runs migrations. When create is
// false a missing file yields common.ErrDatabaseMissing instead of a new,
// empty database.
func Open(ctx context.Context, path string, create bool, m RepositoryManager) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, common.FS("stat", path, err)
		}
		if !create {
			return nil, fmt.Errorf("%s: %w", path, common.ErrDatabaseMissing)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, common.FS("mkdir", filepath.Dir(path), err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func dsn(path string) string {
	return "file:" + filepath.ToSlash(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// gooseLogger routes goose output through our logger.
type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(g.ctx, fmt.Sprintf(format, v...))
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(g.ctx, fmt.Sprintf(format, v...))
}
