// Package cursors persists the per-collection pull high-water marks.
package cursors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/dbx"
	"github.com/dmitrijs2005/offsync/internal/timex"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, owner, collection string) (*models.Cursor, error) {
	c := &models.Cursor{Owner: owner, Collection: collection, LastSyncedAt: timex.Epoch}

	var ms int64
	err := r.db.QueryRowContext(ctx,
		`SELECT last_synced_at FROM _sync_cursor WHERE owner = ? AND collection = ?`,
		owner, collection).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor[%s/%s]: %w", owner, collection, err)
	}
	c.LastSyncedAt = time.UnixMilli(ms).UTC()
	return c, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, c *models.Cursor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO _sync_cursor (owner, collection, last_synced_at) VALUES (?, ?, ?)
		ON CONFLICT(owner, collection) DO UPDATE SET last_synced_at = excluded.last_synced_at
	`, c.Owner, c.Collection, c.LastSyncedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set cursor[%s/%s]: %w", c.Owner, c.Collection, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, owner string) ([]*models.Cursor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT collection, last_synced_at FROM _sync_cursor WHERE owner = ? ORDER BY collection`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list cursors: %w", err)
	}
	defer rows.Close()

	var result []*models.Cursor
	for rows.Next() {
		var (
			c  = models.Cursor{Owner: owner}
			ms int64
		)
		if err := rows.Scan(&c.Collection, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan cursor row: %w", err)
		}
		c.LastSyncedAt = time.UnixMilli(ms).UTC()
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cursor rows: %w", err)
	}
	return result, nil
}
