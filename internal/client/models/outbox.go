package models

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// OpKind classifies an outbox entry.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// OutboxEntry is one pending mutation. Entries are append-only: created with
// the entity write and removed once the remote confirmed the push.
type OutboxEntry struct {
	OpID       string
	Collection string
	Kind       OpKind
	Payload    []byte
	CreatedAt  int64
	// Seq breaks ties between entries created in the same millisecond.
	Seq int64
}

// SnapshotSchema is the current envelope version.
const SnapshotSchema = 1

// Snapshot is the envelope stored in OutboxEntry.Payload: the full entity row
// at mutation time, tagged with its collection and a BLAKE2b-256 checksum.
type Snapshot struct {
	Schema   int             `json:"schema"`
	Kind     string          `json:"kind"`
	Checksum string          `json:"checksum"`
	Row      json.RawMessage `json:"row"`
}

// NewOutboxEntry snapshots e and wraps it in an entry with a fresh op id.
func NewOutboxEntry(e Entity, kind OpKind, now int64) (*OutboxEntry, error) {
	payload, err := EncodeSnapshot(e)
	if err != nil {
		return nil, err
	}
	return &OutboxEntry{
		OpID:       uuid.NewString(),
		Collection: e.Collection(),
		Kind:       kind,
		Payload:    payload,
		CreatedAt:  now,
	}, nil
}

// EncodeSnapshot serializes e into a Snapshot envelope.
func EncodeSnapshot(e Entity) ([]byte, error) {
	row, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s row: %w", e.Collection(), err)
	}
	return json.Marshal(Snapshot{
		Schema:   SnapshotSchema,
		Kind:     e.Collection(),
		Checksum: checksum(row),
		Row:      row,
	})
}

// DecodeSnapshot parses and verifies the envelope of entry. All failures are
// reported as *common.MalformedPayloadError.
func DecodeSnapshot(entry *OutboxEntry) (*Snapshot, error) {
	malformed := func(reason string, err error) error {
		return &common.MalformedPayloadError{OpID: entry.OpID, Reason: reason, Err: err}
	}

	var s Snapshot
	if err := json.Unmarshal(entry.Payload, &s); err != nil {
		return nil, malformed("decode envelope", err)
	}
	if s.Schema != SnapshotSchema {
		return nil, malformed(fmt.Sprintf("unsupported schema %d", s.Schema), nil)
	}
	if s.Kind != entry.Collection {
		return nil, malformed(fmt.Sprintf("kind %q does not match collection %q", s.Kind, entry.Collection), nil)
	}
	if len(bytes.TrimSpace(s.Row)) == 0 {
		return nil, malformed("empty row", nil)
	}
	if s.Checksum != checksum(s.Row) {
		return nil, malformed("checksum mismatch", nil)
	}
	return &s, nil
}

// Fields decodes the row loosely so callers can repair individual fields.
func (s *Snapshot) Fields() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(s.Row, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("row is not an object")
	}
	return m, nil
}

// Decode unmarshals the row into dst.
func (s *Snapshot) Decode(dst Entity) error {
	return json.Unmarshal(s.Row, dst)
}

func checksum(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}
