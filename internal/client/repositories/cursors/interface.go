package cursors

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// Repository stores one pull cursor per (owner, collection).
type Repository interface {
	// Get returns the stored cursor, or one at timex.Epoch when none exists.
	Get(ctx context.Context, owner, collection string) (*models.Cursor, error)
	Set(ctx context.Context, c *models.Cursor) error
	List(ctx context.Context, owner string) ([]*models.Cursor, error)
}
