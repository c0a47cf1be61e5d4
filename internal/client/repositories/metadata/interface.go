// Package metadata stores client state that is not an entity row: the device
// id stamped on local mutations and the time of the last completed sync.
package metadata

import (
	"context"
	"fmt"
	"time"
)

// Key names one metadata entry.
type Key string

const (
	KeyDeviceID Key = "device_id"
	// KeyLastSync holds the RFC 3339 time of the last sync pass without errors.
	KeyLastSync Key = "last_sync"
)

// Repository reads and writes metadata entries. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
	List(ctx context.Context) (map[Key][]byte, error)
	Clear(ctx context.Context) error
}

// SetTime stores t in UTC as RFC 3339.
func SetTime(ctx context.Context, r Repository, key Key, t time.Time) error {
	return r.Set(ctx, key, []byte(t.UTC().Format(time.RFC3339)))
}

// GetTime reads a time written by SetTime. ok is false when the key is unset.
func GetTime(ctx context.Context, r Repository, key Key) (t time.Time, ok bool, err error) {
	v, err := r.Get(ctx, key)
	if err != nil || len(v) == 0 {
		return time.Time{}, false, err
	}
	t, err = time.Parse(time.RFC3339, string(v))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("metadata[%s] is not a time: %w", key, err)
	}
	return t, true, nil
}
