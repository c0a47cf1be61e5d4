package replication

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/remote"
)

// PullResult describes one collection pull.
type PullResult struct {
	Collection string
	// Fetched rows were returned by the remote.
	Fetched int
	// Applied rows won last-write-wins and were written locally.
	Applied int
	// Discarded rows lost to a strictly newer local row.
	Discarded int
	// Skipped rows could not be decoded or belong to another owner.
	Skipped int
	// Cursor is the high-water mark after the pull.
	Cursor time.Time
}

func (e *Engine) pull(ctx context.Context, owner, name string) (PullResult, error) {
	res := PullResult{Collection: name}
	c, err := lookup(name)
	if err != nil {
		return res, err
	}

	var cursor *models.Cursor
	err = e.store.View(ctx, func(ctx context.Context, r *store.Repos) (err error) {
		cursor, err = r.Cursors.Get(ctx, owner, name)
		return err
	})
	if err != nil {
		return res, fmt.Errorf("pull %s: %w", name, err)
	}
	res.Cursor = cursor.LastSyncedAt

	rows, err := e.remote.Select(ctx, name, remote.Filter{UpdatedAfter: cursor.LastSyncedAt, Owner: owner})
	if err != nil {
		return res, fmt.Errorf("pull %s: %w", name, err)
	}
	res.Fetched = len(rows)
	if len(rows) == 0 {
		return res, nil
	}

	incoming := make([]models.Entity, 0, len(rows))
	high := cursor.LastSyncedAt.UnixMilli()
	// ceiling keeps the cursor below the earliest undecodable row so the
	// next pull fetches it again.
	ceiling := int64(math.MaxInt64)
	for _, row := range rows {
		ent, err := c.fromWire(row)
		if err != nil {
			res.Skipped++
			e.log.Warn(ctx, "skipping undecodable remote row", "collection", name, "id", row.ID(), "error", err)
			if at, perr := row.UpdatedAt(); perr == nil {
				ceiling = min(ceiling, at.UnixMilli()-1)
			}
			continue
		}
		if ent.Header().UserID != owner {
			res.Skipped++
			e.log.Warn(ctx, "skipping row of another owner", "collection", name, "id", row.ID())
			continue
		}
		incoming = append(incoming, ent)
		high = max(high, ent.Header().UpdatedAt)
	}
	high = max(min(high, ceiling), cursor.LastSyncedAt.UnixMilli())

	var applied, discarded int
	err = e.store.Update(ctx, func(ctx context.Context, r *store.Repos) error {
		applied, discarded = 0, 0
		local, err := c.index(ctx, r)
		if err != nil {
			return err
		}
		for _, ent := range incoming {
			h := ent.Header()
			if at, ok := local[h.ID]; ok && h.UpdatedAt < at {
				discarded++
				continue
			}
			if err := c.upsert(ctx, r, ent); err != nil {
				return err
			}
			local[h.ID] = h.UpdatedAt
			applied++
		}
		if high > cursor.LastSyncedAt.UnixMilli() {
			return r.Cursors.Set(ctx, &models.Cursor{
				Owner:        owner,
				Collection:   name,
				LastSyncedAt: time.UnixMilli(high).UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("pull %s: %w", name, err)
	}

	res.Applied, res.Discarded = applied, discarded
	res.Cursor = time.UnixMilli(high).UTC()
	e.log.Info(ctx, "pulled", "collection", name, "fetched", res.Fetched, "applied", res.Applied,
		"discarded", res.Discarded, "skipped", res.Skipped, "cursor", res.Cursor)
	return res, nil
}
