package outbox

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// Repository is the durable queue of pending mutations.
type Repository interface {
	// Append stores e and assigns e.Seq.
	Append(ctx context.Context, e *models.OutboxEntry) error
	// ListByCollection returns pending entries ordered by seq, the order they were appended.
	ListByCollection(ctx context.Context, collection string) ([]*models.OutboxEntry, error)
	// DeleteByOpIDs removes the given entries and reports how many were removed.
	DeleteByOpIDs(ctx context.Context, opIDs []string) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountByCollection(ctx context.Context) (map[string]int64, error)
}
