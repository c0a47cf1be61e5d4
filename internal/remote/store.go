// Package remote defines the contract of the authoritative, multi-tenant,
// row-versioned store that devices replicate against, plus an in-memory
// implementation.
package remote

import (
	"context"
	"time"

	"github.com/dmitrijs2005/offsync/internal/wire"
)

// Filter selects the rows of one owner changed strictly after UpdatedAfter.
type Filter struct {
	UpdatedAfter time.Time
	Owner        string
}

// Store is the remote side of the replication protocol. Upsert is keyed by
// row id and replaces the whole row; a batch either applies fully or not at all.
type Store interface {
	Upsert(ctx context.Context, collection string, rows []wire.Row) error
	Select(ctx context.Context, collection string, f Filter) ([]wire.Row, error)
}
