package albums

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// Repository persists album rows, tombstones included.
type Repository interface {
	// Insert stores a new row; it fails if the id exists.
	Insert(ctx context.Context, a *models.Album) error
	// Update overwrites the mutable columns of the owner's row.
	Update(ctx context.Context, a *models.Album) error
	// Upsert writes a row exactly as given, inserting or replacing by id.
	Upsert(ctx context.Context, a *models.Album) error
	// GetByID returns a live row of the owner or common.ErrNotFound.
	GetByID(ctx context.Context, owner, id string) (*models.Album, error)
	// GetAnyByID returns the row regardless of owner or tombstone.
	GetAnyByID(ctx context.Context, id string) (*models.Album, error)
	List(ctx context.Context, owner string, f models.AlbumFilter) ([]*models.Album, error)
	// UpdatedAtIndex maps every stored id to its updatedAt.
	UpdatedAtIndex(ctx context.Context) (map[string]int64, error)
}
