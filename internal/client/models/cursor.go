package models

import "time"

// Cursor is the high-water mark of the last pulled remote updatedAt for one
// (owner, collection) pair.
type Cursor struct {
	Owner        string
	Collection   string
	LastSyncedAt time.Time
}
