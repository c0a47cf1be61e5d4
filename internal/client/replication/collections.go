package replication

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/timex"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

// field maps a snapshot (camelCase) key to its wire (snake_case) column.
type field struct {
	local, remote string
}

var metaFields = []field{
	{"id", "id"},
	{"userId", "user_id"},
	{"deviceId", "device_id"},
	{"version", "version"},
}

// collection binds one entity kind to its wire mapping and local storage.
type collection struct {
	fields   []field
	fromWire func(r wire.Row) (models.Entity, error)
	upsert   func(ctx context.Context, r *store.Repos, e models.Entity) error
	index    func(ctx context.Context, r *store.Repos) (map[string]int64, error)
}

var registry = map[string]collection{
	wire.Albums: {
		fields: []field{{"name", "name"}, {"description", "description"}, {"tags", "tags"}},
		fromWire: func(r wire.Row) (models.Entity, error) {
			var w wire.Album
			if err := wire.Decode(r, &w); err != nil {
				return nil, err
			}
			meta, err := metaFromWire(w.Meta)
			if err != nil {
				return nil, err
			}
			return &models.Album{Meta: meta, Name: w.Name, Description: w.Description, Tags: tags(w.Tags)}, nil
		},
		upsert: func(ctx context.Context, r *store.Repos, e models.Entity) error {
			return r.Albums.Upsert(ctx, e.(*models.Album))
		},
		index: func(ctx context.Context, r *store.Repos) (map[string]int64, error) {
			return r.Albums.UpdatedAtIndex(ctx)
		},
	},
	wire.Songs: {
		fields: []field{{"albumId", "album_id"}, {"name", "name"}, {"description", "description"}, {"tags", "tags"}},
		fromWire: func(r wire.Row) (models.Entity, error) {
			var w wire.Song
			if err := wire.Decode(r, &w); err != nil {
				return nil, err
			}
			meta, err := metaFromWire(w.Meta)
			if err != nil {
				return nil, err
			}
			return &models.Song{Meta: meta, AlbumID: w.AlbumID, Name: w.Name, Description: w.Description, Tags: tags(w.Tags)}, nil
		},
		upsert: func(ctx context.Context, r *store.Repos, e models.Entity) error {
			return r.Songs.Upsert(ctx, e.(*models.Song))
		},
		index: func(ctx context.Context, r *store.Repos) (map[string]int64, error) {
			return r.Songs.UpdatedAtIndex(ctx)
		},
	},
	wire.Messages: {
		fields: []field{{"songId", "song_id"}, {"content", "content"}, {"type", "type"}, {"mediaUri", "media_uri"}},
		fromWire: func(r wire.Row) (models.Entity, error) {
			var w wire.Message
			if err := wire.Decode(r, &w); err != nil {
				return nil, err
			}
			meta, err := metaFromWire(w.Meta)
			if err != nil {
				return nil, err
			}
			typ := models.MessageType(w.Type)
			if typ == "" {
				typ = models.MessageText
			}
			return &models.Message{Meta: meta, SongID: w.SongID, Content: w.Content, Type: typ, MediaURI: w.MediaURI}, nil
		},
		upsert: func(ctx context.Context, r *store.Repos, e models.Entity) error {
			return r.Messages.Upsert(ctx, e.(*models.Message))
		},
		index: func(ctx context.Context, r *store.Repos) (map[string]int64, error) {
			return r.Messages.UpdatedAtIndex(ctx)
		},
	},
}

func lookup(name string) (collection, error) {
	c, ok := registry[name]
	if !ok {
		return collection{}, fmt.Errorf("%w: %q", common.ErrUnknownCollection, name)
	}
	return c, nil
}

// toWire turns snapshot fields into a wire row. Required timestamps that are
// missing or malformed become now; a malformed deletedAt becomes null. An
// empty owner is replaced by owner.
func (c collection) toWire(fields map[string]any, owner string, now time.Time) (wire.Row, error) {
	row := wire.Row{}
	for _, list := range [][]field{metaFields, c.fields} {
		for _, f := range list {
			if v, ok := fields[f.local]; ok {
				row[f.remote] = v
			}
		}
	}
	if row.ID() == "" {
		return nil, fmt.Errorf("snapshot has no id")
	}
	if row.Owner() == "" {
		row["user_id"] = owner
	}

	nowMillis := now.UnixMilli()
	for _, f := range []field{{"createdAt", "created_at"}, {"updatedAt", "updated_at"}} {
		ms, ok := timex.CoerceMillis(fields[f.local])
		if !ok {
			ms = nowMillis
		}
		row[f.remote] = timex.FormatMillis(ms)
	}
	if ms, ok := timex.CoerceMillis(fields["deletedAt"]); ok {
		row["deleted_at"] = timex.FormatMillis(ms)
	} else {
		row["deleted_at"] = nil
	}
	return row, nil
}

func metaFromWire(w wire.Meta) (models.Meta, error) {
	m := models.Meta{ID: w.ID, UserID: w.UserID, DeviceID: w.DeviceID, Version: w.Version}
	if m.ID == "" {
		return m, fmt.Errorf("row has no id")
	}
	var err error
	if m.CreatedAt, err = timex.ParseWireMillis(w.CreatedAt); err != nil {
		return m, fmt.Errorf("row %q created_at: %w", m.ID, err)
	}
	if m.UpdatedAt, err = timex.ParseWireMillis(w.UpdatedAt); err != nil {
		return m, fmt.Errorf("row %q updated_at: %w", m.ID, err)
	}
	if w.DeletedAt != nil && *w.DeletedAt != "" {
		ms, err := timex.ParseWireMillis(*w.DeletedAt)
		if err != nil {
			return m, fmt.Errorf("row %q deleted_at: %w", m.ID, err)
		}
		m.DeletedAt = &ms
	}
	return m, nil
}

func tags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}
