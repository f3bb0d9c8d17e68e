package shots

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

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectShot = `select id, code, frame_start, frame_end, coalesce(user_assigned, ''),
	coalesce(shot_path, ''), coalesce(description, ''), coalesce(discord_thread_id, ''),
	coalesce(thumbnail_path, '') from shots`

type scanner interface {
	Scan(dest ...any) error
}

func scanShot(row scanner, s *models.Shot) error {
	return row.Scan(&s.ID, &s.Code, &s.FrameStart, &s.FrameEnd, &s.UserAssigned,
		&s.ShotPath, &s.Description, &s.DiscordThreadID, &s.ThumbnailPath)
}

func (r *SQLiteRepository) Create(ctx context.Context, s *models.Shot) error {
	query := `insert into shots (id, code, frame_start, frame_end, user_assigned, shot_path, description, discord_thread_id, thumbnail_path)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Code, s.FrameStart, s.FrameEnd, s.UserAssigned,
		s.ShotPath, s.Description, s.DiscordThreadID, s.ThumbnailPath)
	if err != nil {
		if dbx.IsConstraintViolation(err) {
			return fmt.Errorf("shot %s: %w", s.Code, common.ErrorAlreadyExists)
		}
		return fmt.Errorf("failed to insert shot: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByCode(ctx context.Context, code string) (*models.Shot, error) {
	row := r.db.QueryRowContext(ctx, selectShot+` where code = ?`, code)

	s := &models.Shot{}
	if err := scanShot(row, s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Shot, error) {
	rows, err := r.db.QueryContext(ctx, selectShot+` order by code`)
	if err != nil {
		return nil, fmt.Errorf("failed to select shots: %w", err)
	}
	defer rows.Close()

	var result []models.Shot
	for rows.Next() {
		var s models.Shot
		if err := scanShot(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, s *models.Shot) error {
	query := `update shots set frame_start = ?, frame_end = ?, user_assigned = ?, shot_path = ?,
		description = ?, discord_thread_id = ?, thumbnail_path = ? where code = ?`
	return r.execOne(ctx, "update shot", query, s.FrameStart, s.FrameEnd, s.UserAssigned, s.ShotPath,
		s.Description, s.DiscordThreadID, s.ThumbnailPath, s.Code)
}

func (r *SQLiteRepository) UpdatePath(ctx context.Context, code, relPath string) error {
	return r.execOne(ctx, "update shot path", `update shots set shot_path = ? where code = ?`, relPath, code)
}

func (r *SQLiteRepository) RenameCode(ctx context.Context, oldCode, newCode string) error {
	// An id derived from the old code follows the code, so the old code is
	// free for a new shot afterwards.
	err := r.execOne(ctx, "rename shot",
		`update shots set code = ?, id = case when id = ? then ? else id end where code = ?`,
		newCode, oldCode, newCode, oldCode)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `update shot_assets set shot_code = ? where shot_code = ?`, newCode, oldCode); err != nil {
		return fmt.Errorf("failed to update shot links: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetID(ctx context.Context, code, id string) error {
	return r.execOne(ctx, "update shot id", `update shots set id = ? where code = ?`, id, code)
}

func (r *SQLiteRepository) SetDiscordThread(ctx context.Context, code, threadID string) error {
	return r.execOne(ctx, "update discord thread", `update shots set discord_thread_id = ? where code = ?`, threadID, code)
}

func (r *SQLiteRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `delete from shot_assets where shot_code = ?`, code); err != nil {
		return fmt.Errorf("failed to delete shot links: %w", err)
	}
	return r.execOne(ctx, "delete shot", `delete from shots where code = ?`, code)
}

// execOne runs a statement that must touch exactly one row.
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
