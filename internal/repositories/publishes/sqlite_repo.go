package publishes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/dbx"
	"github.com/dmitrijs2005/orion/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectPublish = `select id, source_path, published_path, digest, size, coalesce(published_by, ''),
	published_at, coalesce(mirror_key, '') from publishes`

type scanner interface {
	Scan(dest ...any) error
}

func scanPublish(row scanner, p *models.Publish) error {
	var at string
	if err := row.Scan(&p.ID, &p.SourcePath, &p.PublishedPath, &p.Digest, &p.Size, &p.PublishedBy, &at, &p.MirrorKey); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return fmt.Errorf("bad published_at %q: %w", at, err)
	}
	p.PublishedAt = t
	return nil
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Publish) error {
	query := `insert into publishes (source_path, published_path, digest, size, published_by, published_at, mirror_key)
		values (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, p.SourcePath, p.PublishedPath, p.Digest, p.Size, p.PublishedBy,
		p.PublishedAt.UTC().Format(time.RFC3339Nano), p.MirrorKey)
	if err != nil {
		return fmt.Errorf("failed to insert publish: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get publish id: %w", err)
	}
	p.ID = id
	return nil
}

func (r *SQLiteRepository) Latest(ctx context.Context, publishedPath string) (*models.Publish, error) {
	row := r.db.QueryRowContext(ctx, selectPublish+` where published_path = ? order by id desc limit 1`, publishedPath)

	p := &models.Publish{}
	if err := scanPublish(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListUnder(ctx context.Context, prefix string) ([]models.Publish, error) {
	rows, err := r.db.QueryContext(ctx, selectPublish+` where published_path like ? escape '\' order by id desc`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to select publishes: %w", err)
	}
	defer rows.Close()

	var result []models.Publish
	for rows.Next() {
		var p models.Publish
		if err := scanPublish(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByPublishedPath(ctx context.Context, publishedPath string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `delete from publishes where published_path = ?`, publishedPath)
	if err != nil {
		return 0, fmt.Errorf("failed to delete publishes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
