package dbx

import (
	"context"
	"fmt"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// UpdatedAtIndex loads id -> updated_at for every row of table, tombstones
// included. table must be a trusted identifier.
func UpdatedAtIndex(ctx context.Context, db DBTX, table string) (map[string]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, updated_at FROM `+table)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", table, err)
	}
	defer rows.Close()

	idx := make(map[string]int64)
	for rows.Next() {
		var (
			id string
			ts int64
		)
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan %s index row: %w", table, err)
		}
		idx[id] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s index: %w", table, err)
	}
	return idx, nil
}
