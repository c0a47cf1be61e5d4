package songs

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// Repository persists song rows. The parent album is not enforced.
type Repository interface {
	Insert(ctx context.Context, s *models.Song) error
	Update(ctx context.Context, s *models.Song) error
	Upsert(ctx context.Context, s *models.Song) error
	GetByID(ctx context.Context, owner, id string) (*models.Song, error)
	GetAnyByID(ctx context.Context, id string) (*models.Song, error)
	List(ctx context.Context, owner string, f models.SongFilter) ([]*models.Song, error)
	UpdatedAtIndex(ctx context.Context) (map[string]int64, error)
}
