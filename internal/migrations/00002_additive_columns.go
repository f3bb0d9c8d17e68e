package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAdditiveColumns, nil)
}

type column struct {
	table, name, decl string
}

// Databases created by older tools may already carry some of these
// columns, so each one is probed before it is added.
var additiveColumns = []column{
	{"shots", "shot_path", "TEXT"},
	{"shots", "description", "TEXT"},
	{"shots", "discord_thread_id", "TEXT"},
	{"shots", "thumbnail_path", "TEXT"},
	{"assets", "path", "TEXT"},
	{"assets", "description", "TEXT"},
	{"assets", "thumbnail_path", "TEXT"},
	{"assets", "user_assigned", "TEXT"},
}

func upAdditiveColumns(ctx context.Context, tx *sql.Tx) error {
	for _, c := range additiveColumns {
		ok, err := hasColumn(ctx, tx, c.table, c.name)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.decl)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", c.table, c.name, err)
		}
	}
	return nil
}

func hasColumn(ctx context.Context, tx *sql.Tx, table, name string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			colName   string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if colName == name {
			return true, nil
		}
	}
	return false, rows.Err()
}
