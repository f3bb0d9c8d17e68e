package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/dbx"
	"github.com/dmitrijs2005/orion/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectAsset = `select a.id, a.name, coalesce(a.type, ''), coalesce(a.path, ''),
	coalesce(a.description, ''), coalesce(a.thumbnail_path, ''), coalesce(a.user_assigned, '') from assets a`

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner, a *models.Asset) error {
	return row.Scan(&a.ID, &a.Name, &a.Type, &a.Path, &a.Description, &a.ThumbnailPath, &a.UserAssigned)
}

func (r *SQLiteRepository) Create(ctx context.Context, a *models.Asset) error {
	query := `insert into assets (id, name, type, path, description, thumbnail_path, user_assigned)
		values (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.Name, a.Type, a.Path, a.Description, a.ThumbnailPath, a.UserAssigned)
	if err != nil {
		if dbx.IsConstraintViolation(err) {
			return fmt.Errorf("asset %s: %w", a.Name, common.ErrorAlreadyExists)
		}
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	return r.getOne(ctx, selectAsset+` where a.id = ?`, id)
}

func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*models.Asset, error) {
	return r.getOne(ctx, selectAsset+` where a.name = ?`, name)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg string) (*models.Asset, error) {
	a := &models.Asset{}
	if err := scanAsset(r.db.QueryRowContext(ctx, query, arg), a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) List(ctx context.Context, assetType string) ([]models.Asset, error) {
	if assetType == "" {
		return r.list(ctx, selectAsset+` order by a.name`)
	}
	return r.list(ctx, selectAsset+` where a.type = ? order by a.name`, assetType)
}

func (r *SQLiteRepository) ShotAssets(ctx context.Context, shotCode string) ([]models.Asset, error) {
	return r.list(ctx, selectAsset+` join shot_assets sa on sa.asset_id = a.id where sa.shot_code = ? order by a.name`, shotCode)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select assets: %w", err)
	}
	defer rows.Close()

	var result []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := scanAsset(rows, &a); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, a *models.Asset) error {
	query := `update assets set name = ?, type = ?, path = ?, description = ?, thumbnail_path = ?, user_assigned = ?
		where id = ?`
	return r.execOne(ctx, "update asset", query, a.Name, a.Type, a.Path, a.Description, a.ThumbnailPath, a.UserAssigned, a.ID)
}

func (r *SQLiteRepository) UpdatePath(ctx context.Context, name, relPath string) error {
	return r.execOne(ctx, "update asset path", `update assets set path = ? where name = ?`, relPath, name)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `delete from shot_assets where asset_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete asset links: %w", err)
	}
	return r.execOne(ctx, "delete asset", `delete from assets where id = ?`, id)
}

func (r *SQLiteRepository) Link(ctx context.Context, shotCode, assetID string) error {
	_, err := r.db.ExecContext(ctx, `insert or ignore into shot_assets (shot_code, asset_id) values (?, ?)`, shotCode, assetID)
	if err != nil {
		return fmt.Errorf("failed to link asset: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Unlink(ctx context.Context, shotCode, assetID string) error {
	return r.execOne(ctx, "unlink asset", `delete from shot_assets where shot_code = ? and asset_id = ?`, shotCode, assetID)
}

func (r *SQLiteRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dbx.IsConstraintViolation(err) {
			return fmt.Errorf("failed to %s: %w", op, common.ErrorAlreadyExists)
		}
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}
