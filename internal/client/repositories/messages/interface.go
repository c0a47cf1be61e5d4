package messages

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// Repository persists chat messages attached to songs.
type Repository interface {
	Insert(ctx context.Context, m *models.Message) error
	Update(ctx context.Context, m *models.Message) error
	Upsert(ctx context.Context, m *models.Message) error
	GetByID(ctx context.Context, owner, id string) (*models.Message, error)
	GetAnyByID(ctx context.Context, id string) (*models.Message, error)
	// List returns live messages in creation order.
	List(ctx context.Context, owner string, f models.MessageFilter) ([]*models.Message, error)
	UpdatedAtIndex(ctx context.Context) (map[string]int64, error)
}
