package reconcile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/dbx"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/models"
	"github.com/dmitrijs2005/orion/internal/shotcode"
	"github.com/dmitrijs2005/orion/internal/store"
	"github.com/google/uuid"
)

// row is the part of a database record the reconciler cares about.
type row struct {
	ID     string
	Path   string
	Legacy bool
}

// entities hides the differences between shot and asset tables.
type entities interface {
	kind() layout.Kind
	target(folder string) string
	find(ctx context.Context, key string) (*row, error)
	register(ctx context.Context, key, rel string) (string, error)
	rename(ctx context.Context, oldKey, newKey string) error
	simplify(ctx context.Context, key string) error
	updatePath(ctx context.Context, key, rel string) error
}

type shotEntities struct {
	db    *sql.DB
	repos store.RepositoryManager
}

func (e *shotEntities) kind() layout.Kind { return layout.KindShot }

func (e *shotEntities) target(folder string) string { return shotcode.Canonical(folder) }

func (e *shotEntities) find(ctx context.Context, code string) (*row, error) {
	s, err := e.repos.Shots(e.db).GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &row{ID: s.ID, Path: s.ShotPath, Legacy: s.HasLegacyID()}, nil
}

func (e *shotEntities) register(ctx context.Context, code, rel string) (string, error) {
	err := e.repos.Shots(e.db).Create(ctx, &models.Shot{
		ID:           code,
		Code:         code,
		FrameStart:   models.DefaultFrameStart,
		FrameEnd:     models.DefaultFrameEnd,
		UserAssigned: models.MigratedUser,
		ShotPath:     rel,
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

func (e *shotEntities) rename(ctx context.Context, oldCode, newCode string) error {
	return dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return e.repos.Shots(tx).RenameCode(ctx, oldCode, newCode)
	})
}

func (e *shotEntities) simplify(ctx context.Context, code string) error {
	return e.repos.Shots(e.db).SetID(ctx, code, code)
}

func (e *shotEntities) updatePath(ctx context.Context, code, rel string) error {
	return e.repos.Shots(e.db).UpdatePath(ctx, code, rel)
}

type assetEntities struct {
	db    *sql.DB
	repos store.RepositoryManager
}

func (e *assetEntities) kind() layout.Kind { return layout.KindAsset }

// Asset names are free text and are never canonicalised.
func (e *assetEntities) target(folder string) string { return folder }

func (e *assetEntities) find(ctx context.Context, name string) (*row, error) {
	a, err := e.repos.Assets(e.db).GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &row{ID: a.ID, Path: a.Path}, nil
}

func (e *assetEntities) register(ctx context.Context, name, rel string) (string, error) {
	a := &models.Asset{ID: uuid.NewString(), Name: name, Path: rel, UserAssigned: models.MigratedUser}
	if err := e.repos.Assets(e.db).Create(ctx, a); err != nil {
		return "", err
	}
	return a.ID, nil
}

func (e *assetEntities) rename(ctx context.Context, oldName, newName string) error {
	return errors.New("asset names are not canonicalised")
}

func (e *assetEntities) simplify(ctx context.Context, name string) error {
	return errors.New("asset ids are not simplified")
}

func (e *assetEntities) updatePath(ctx context.Context, name, rel string) error {
	return e.repos.Assets(e.db).UpdatePath(ctx, name, rel)
}

// lookup wraps find so that "no row" is not an error.
func lookup(ctx context.Context, e entities, key string) (*row, error) {
	r, err := e.find(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return r, err
}
