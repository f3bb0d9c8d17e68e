// Package publishes records files published out of task export folders.
package publishes

import (
	"context"

	"github.com/dmitrijs2005/orion/internal/models"
)

type Repository interface {
	// Create inserts p and sets p.ID.
	Create(ctx context.Context, p *models.Publish) error

	// Latest returns the most recent publish of the given project-relative
	// published path.
	Latest(ctx context.Context, publishedPath string) (*models.Publish, error)

	// ListUnder returns publishes whose published path starts with prefix,
	// newest first.
	ListUnder(ctx context.Context, prefix string) ([]models.Publish, error)

	// DeleteByPublishedPath forgets every publish of a path and reports how
	// many rows were removed.
	DeleteByPublishedPath(ctx context.Context, publishedPath string) (int64, error)
}
