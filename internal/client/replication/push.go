package replication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

// MediaUploader moves a local media file to shared storage and returns the
// URI other devices can resolve.
type MediaUploader interface {
	Upload(ctx context.Context, owner, localPath string) (string, error)
}

// PushResult describes one collection push.
type PushResult struct {
	Collection string
	// Entries is the number of outbox entries consumed.
	Entries int
	// Rows is the number of distinct rows sent after coalescing.
	Rows int
	// Skipped entries could not be decoded and remain in the outbox.
	Skipped int
}

func (e *Engine) push(ctx context.Context, owner, name string) (PushResult, error) {
	res := PushResult{Collection: name}
	c, err := lookup(name)
	if err != nil {
		return res, err
	}

	var pending []*models.OutboxEntry
	err = e.store.View(ctx, func(ctx context.Context, r *store.Repos) (err error) {
		pending, err = r.Outbox.ListByCollection(ctx, name)
		return err
	})
	if err != nil {
		return res, fmt.Errorf("push %s: %w", name, err)
	}
	if len(pending) == 0 {
		return res, nil
	}

	now := e.now()
	var (
		rows  []wire.Row
		slot  = make(map[string]int)
		opIDs = make([]string, 0, len(pending))
	)
	for _, entry := range pending {
		row, err := decodeEntry(c, entry, owner, now)
		if err != nil {
			res.Skipped++
			e.log.Warn(ctx, "skipping undecodable outbox entry", "collection", name, "op_id", entry.OpID, "error", err)
			continue
		}
		// Entries are in creation order, so the last snapshot of an id wins.
		if i, ok := slot[row.ID()]; ok {
			rows[i] = row
		} else {
			slot[row.ID()] = len(rows)
			rows = append(rows, row)
		}
		opIDs = append(opIDs, entry.OpID)
	}
	if len(rows) == 0 {
		return res, nil
	}

	if name == wire.Messages {
		if err := e.uploadMedia(ctx, owner, rows); err != nil {
			return res, fmt.Errorf("push %s: %w", name, err)
		}
	}

	if err := e.remote.Upsert(ctx, name, rows); err != nil {
		return res, fmt.Errorf("push %s: %w", name, err)
	}

	err = e.store.Update(ctx, func(ctx context.Context, r *store.Repos) error {
		_, err := r.Outbox.DeleteByOpIDs(ctx, opIDs)
		return err
	})
	if err != nil {
		// The remote has the rows; the next pass re-sends them, which is idempotent.
		return res, fmt.Errorf("push %s: clear outbox: %w", name, err)
	}

	res.Entries = len(opIDs)
	res.Rows = len(rows)
	e.log.Info(ctx, "pushed", "collection", name, "entries", res.Entries, "rows", res.Rows, "skipped", res.Skipped)
	return res, nil
}

func decodeEntry(c collection, entry *models.OutboxEntry, owner string, now time.Time) (wire.Row, error) {
	snap, err := models.DecodeSnapshot(entry)
	if err != nil {
		return nil, err
	}
	fields, err := snap.Fields()
	if err != nil {
		return nil, err
	}
	return c.toWire(fields, owner, now)
}

// uploadMedia replaces local audio paths with uploaded URIs.
func (e *Engine) uploadMedia(ctx context.Context, owner string, rows []wire.Row) error {
	for _, row := range rows {
		uri, _ := row["media_uri"].(string)
		if row["type"] != string(models.MessageAudio) || !isLocalPath(uri) {
			continue
		}
		if e.media == nil {
			e.log.Warn(ctx, "no media uploader configured, sending local path", "id", row.ID())
			continue
		}
		remoteURI, err := e.media.Upload(ctx, owner, uri)
		if err != nil {
			return fmt.Errorf("upload media for %s: %w", row.ID(), err)
		}
		row["media_uri"] = remoteURI
	}
	return nil
}

func isLocalPath(uri string) bool {
	return uri != "" && !strings.Contains(uri, "://")
}
