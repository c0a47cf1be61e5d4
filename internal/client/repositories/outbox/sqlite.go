// Package outbox persists the append-only log of local mutations awaiting
// push. Entries are written in the same transaction as the entity row they
// describe and deleted only after the remote accepted them.
package outbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e *models.OutboxEntry) error {
	query := `INSERT INTO _outbox (op_id, collection, kind, payload, created_at, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM _outbox))
		RETURNING seq`
	err := r.db.QueryRowContext(ctx, query, e.OpID, e.Collection, string(e.Kind), e.Payload, e.CreatedAt).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("failed to append outbox entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByCollection(ctx context.Context, collection string) ([]*models.OutboxEntry, error) {
	query := `SELECT op_id, collection, kind, payload, created_at, seq FROM _outbox
		WHERE collection = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox: %w", err)
	}
	defer rows.Close()

	var result []*models.OutboxEntry
	for rows.Next() {
		var (
			e    models.OutboxEntry
			kind string
		)
		if err := rows.Scan(&e.OpID, &e.Collection, &kind, &e.Payload, &e.CreatedAt, &e.Seq); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		e.Kind = models.OpKind(kind)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByOpIDs(ctx context.Context, opIDs []string) (int64, error) {
	if len(opIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(opIDs)), ",")
	params := make([]any, len(opIDs))
	for i, id := range opIDs {
		params[i] = id
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM _outbox WHERE op_id IN (`+placeholders+`)`, params...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete outbox entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM _outbox`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outbox: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CountByCollection(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT collection, COUNT(*) FROM _outbox GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var (
			c string
			n int64
		)
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outbox count: %w", err)
		}
		result[c] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox counts: %w", err)
	}
	return result, nil
}
