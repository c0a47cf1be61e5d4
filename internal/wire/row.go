// Package wire defines the canonical row shape exchanged with the remote
// store: snake_case field names and ISO-8601 timestamps, decoupled from the
// local store's epoch-millis representation.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/offsync/internal/timex"
)

// Collection names served by the engine and the remote store.
const (
	Albums   = "albums"
	Songs    = "songs"
	Messages = "messages"
)

// Collections lists every collection in dependency order (parents first).
var Collections = []string{Albums, Songs, Messages}

// Known reports whether collection is served.
func Known(collection string) bool {
	for _, c := range Collections {
		if c == collection {
			return true
		}
	}
	return false
}

// Row is one remote row keyed by snake_case column names.
type Row map[string]any

// ID returns the row identifier or "".
func (r Row) ID() string {
	s, _ := r["id"].(string)
	return s
}

// Owner returns the user_id column or "".
func (r Row) Owner() string {
	s, _ := r["user_id"].(string)
	return s
}

// UpdatedAt parses the updated_at column.
func (r Row) UpdatedAt() (time.Time, error) {
	s, ok := r["updated_at"].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("row %q: updated_at missing", r.ID())
	}
	return timex.ParseWire(s)
}

// NewValidator returns a validator that understands the row tags, including
// wiretime. Client services and the server share it so a row the client
// stores is never one the server refuses.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("wiretime", func(fl validator.FieldLevel) bool {
		_, err := timex.ParseWire(fl.Field().String())
		return err == nil
	})
	return v
}

// Meta holds the replication columns shared by every collection. The
// wiretime tag is registered by NewValidator.
type Meta struct {
	ID        string  `json:"id" validate:"required,max=64"`
	UserID    string  `json:"user_id" validate:"required,max=64"`
	DeviceID  string  `json:"device_id" validate:"max=64"`
	Version   int64   `json:"version" validate:"gte=0"`
	CreatedAt string  `json:"created_at" validate:"required,wiretime"`
	UpdatedAt string  `json:"updated_at" validate:"required,wiretime"`
	DeletedAt *string `json:"deleted_at" validate:"omitempty,wiretime"`
}

type Album struct {
	Meta
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

type Song struct {
	Meta
	AlbumID     string   `json:"album_id" validate:"required"`
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

type Message struct {
	Meta
	SongID   string  `json:"song_id" validate:"required"`
	Content  string  `json:"content"`
	Type     string  `json:"type" validate:"omitempty,oneof=text audio"`
	MediaURI *string `json:"media_uri"`
}

// Encode converts a typed row (Album, Song, Message) into a Row.
func Encode(v any) (Row, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	var r Row
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return r, nil
}

// Decode fills dst (a pointer to Album, Song or Message) from r.
func Decode(r Row, dst any) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("decode row %q: %w", r.ID(), err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode row %q: %w", r.ID(), err)
	}
	return nil
}

// NewTyped returns an empty typed row for collection.
func NewTyped(collection string) (any, error) {
	switch collection {
	case Albums:
		return &Album{}, nil
	case Songs:
		return &Song{}, nil
	case Messages:
		return &Message{}, nil
	default:
		return nil, fmt.Errorf("collection %q has no row type", collection)
	}
}
