package shots

import (
	"context"

	"github.com/dmitrijs2005/orion/internal/models"
)

// Repository describes CRUD operations on shots.
type Repository interface {
	// Create inserts a new shot row.
	Create(ctx context.Context, shot *models.Shot) error

	// GetByCode returns the shot with the given code.
	GetByCode(ctx context.Context, code string) (*models.Shot, error)

	// List returns every shot sorted by code.
	List(ctx context.Context) ([]models.Shot, error)

	// Update overwrites the mutable columns of the shot identified by code.
	Update(ctx context.Context, shot *models.Shot) error

	// UpdatePath stores the root-relative folder of a shot.
	UpdatePath(ctx context.Context, code, relPath string) error

	// RenameCode changes a shot's code and re-points its asset links. An id
	// equal to the old code is renamed with it.
	RenameCode(ctx context.Context, oldCode, newCode string) error

	// SetID overwrites the id column. Rows in other tables that refer to
	// the old id are not touched.
	SetID(ctx context.Context, code, id string) error

	// SetDiscordThread stores the chat thread id for a shot.
	SetDiscordThread(ctx context.Context, code, threadID string) error

	// Delete removes the shot row and its asset links.
	Delete(ctx context.Context, code string) error
}
