package remote

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]wire.Row
}

func NewMemory() *Memory {
	m := &Memory{data: make(map[string]map[string]wire.Row)}
	for _, c := range wire.Collections {
		m.data[c] = make(map[string]wire.Row)
	}
	return m
}

func (m *Memory) Upsert(ctx context.Context, collection string, rows []wire.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.data[collection]
	if !ok {
		return fmt.Errorf("%w: %w %q", common.ErrRemoteRejected, common.ErrUnknownCollection, collection)
	}

	// validate the whole batch before touching the table
	for _, r := range rows {
		if r.ID() == "" || r.Owner() == "" {
			return fmt.Errorf("%w: row without id or user_id", common.ErrRemoteRejected)
		}
		if _, err := r.UpdatedAt(); err != nil {
			return fmt.Errorf("%w: %v", common.ErrRemoteRejected, err)
		}
		if cur, exists := table[r.ID()]; exists && cur.Owner() != r.Owner() {
			return fmt.Errorf("%w: row %q belongs to another owner", common.ErrRemoteRejected, r.ID())
		}
	}

	for _, r := range rows {
		table[r.ID()] = maps.Clone(r)
	}
	return nil
}

func (m *Memory) Select(ctx context.Context, collection string, f Filter) ([]wire.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	table, ok := m.data[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", common.ErrRemoteRejected, common.ErrUnknownCollection, collection)
	}

	type item struct {
		row wire.Row
		ts  time.Time
	}
	var items []item
	for _, r := range table {
		if r.Owner() != f.Owner {
			continue
		}
		ts, err := r.UpdatedAt()
		if err != nil || !ts.After(f.UpdatedAfter) {
			continue
		}
		items = append(items, item{row: maps.Clone(r), ts: ts})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ts.Before(items[j].ts) })

	result := make([]wire.Row, 0, len(items))
	for _, it := range items {
		result = append(result, it.row)
	}
	return result, nil
}

// Get returns a copy of one stored row.
func (m *Memory) Get(collection, id string) (wire.Row, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.data[collection][id]
	if !ok {
		return nil, false
	}
	return maps.Clone(r), true
}

// Len returns the number of rows stored in collection.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}
