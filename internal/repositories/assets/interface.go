// Package assets provides the persistence layer for assets and their
// links to shots.
package assets

import (
	"context"

	"github.com/dmitrijs2005/orion/internal/models"
)

// Repository describes CRUD operations on assets and the shot_assets join
// table.
type Repository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	GetByName(ctx context.Context, name string) (*models.Asset, error)

	// List returns assets sorted by name; a non-empty assetType filters
	// on the type column.
	List(ctx context.Context, assetType string) ([]models.Asset, error)

	// Update overwrites every mutable column of the asset identified by ID,
	// including its name.
	Update(ctx context.Context, asset *models.Asset) error
	UpdatePath(ctx context.Context, name, relPath string) error

	// Delete removes the asset row and its shot links.
	Delete(ctx context.Context, id string) error

	// Link attaches an asset to a shot; linking twice is a no-op.
	Link(ctx context.Context, shotCode, assetID string) error
	Unlink(ctx context.Context, shotCode, assetID string) error
	ShotAssets(ctx context.Context, shotCode string) ([]models.Asset, error)
}
