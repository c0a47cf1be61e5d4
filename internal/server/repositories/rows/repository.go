// Package rows persists replicated rows in PostgreSQL, one table per collection.
package rows

import (
	"context"
	"time"

	"github.com/dmitrijs2005/offsync/internal/wire"
)

// Repository stores typed wire rows for a single owner-checked table.
type Repository interface {
	UpsertAlbum(ctx context.Context, a *wire.Album) error
	UpsertSong(ctx context.Context, s *wire.Song) error
	UpsertMessage(ctx context.Context, m *wire.Message) error
	SelectUpdated(ctx context.Context, collection, owner string, after time.Time) ([]wire.Row, error)
}
