package rows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/dbx"
	"github.com/dmitrijs2005/offsync/internal/timex"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

// ErrOwnerConflict is returned when a row id already belongs to another owner.
var ErrOwnerConflict = errors.New("row belongs to another owner")

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db   dbx.DBTX
	tmap *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, tmap: pgtype.NewMap()}
}

func (r *PostgresRepository) UpsertAlbum(ctx context.Context, a *wire.Album) error {
	ts, err := parseMeta(a.Meta)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO albums (id, user_id, device_id, version, name, description, tags, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id)
		DO UPDATE SET
			device_id = EXCLUDED.device_id,
			version = EXCLUDED.version,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			tags = EXCLUDED.tags,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
			WHERE albums.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.DeviceID, a.Version, a.Name, a.Description, nonNil(a.Tags),
		ts.created, ts.updated, ts.deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert album: %w", err)
	}
	return expectOwned(res, a.ID)
}

func (r *PostgresRepository) UpsertSong(ctx context.Context, s *wire.Song) error {
	ts, err := parseMeta(s.Meta)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO songs (id, user_id, device_id, version, album_id, name, description, tags, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE SET
			device_id = EXCLUDED.device_id,
			version = EXCLUDED.version,
			album_id = EXCLUDED.album_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			tags = EXCLUDED.tags,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
			WHERE songs.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.DeviceID, s.Version, s.AlbumID, s.Name, s.Description, nonNil(s.Tags),
		ts.created, ts.updated, ts.deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert song: %w", err)
	}
	return expectOwned(res, s.ID)
}

func (r *PostgresRepository) UpsertMessage(ctx context.Context, m *wire.Message) error {
	ts, err := parseMeta(m.Meta)
	if err != nil {
		return err
	}
	typ := m.Type
	if typ == "" {
		typ = "text"
	}
	query := `
		INSERT INTO messages (id, user_id, device_id, version, song_id, content, type, media_uri, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE SET
			device_id = EXCLUDED.device_id,
			version = EXCLUDED.version,
			song_id = EXCLUDED.song_id,
			content = EXCLUDED.content,
			type = EXCLUDED.type,
			media_uri = EXCLUDED.media_uri,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
			WHERE messages.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.DeviceID, m.Version, m.SongID, m.Content, typ, m.MediaURI,
		ts.created, ts.updated, ts.deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}
	return expectOwned(res, m.ID)
}

var selectQueries = map[string]string{
	wire.Albums: `SELECT id, user_id, device_id, version, name, description, tags, created_at, updated_at, deleted_at
		FROM albums WHERE updated_at > $1 AND user_id = $2 ORDER BY updated_at, id`,
	wire.Songs: `SELECT id, user_id, device_id, version, album_id, name, description, tags, created_at, updated_at, deleted_at
		FROM songs WHERE updated_at > $1 AND user_id = $2 ORDER BY updated_at, id`,
	wire.Messages: `SELECT id, user_id, device_id, version, song_id, content, type, media_uri, created_at, updated_at, deleted_at
		FROM messages WHERE updated_at > $1 AND user_id = $2 ORDER BY updated_at, id`,
}

// SelectUpdated returns the owner's rows in collection with updated_at
// strictly after after, oldest first.
func (r *PostgresRepository) SelectUpdated(ctx context.Context, collection, owner string, after time.Time) ([]wire.Row, error) {
	query, ok := selectQueries[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownCollection, collection)
	}

	rows, err := r.db.QueryContext(ctx, query, after.UTC(), owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", collection, err)
	}
	defer rows.Close()

	var result []wire.Row
	for rows.Next() {
		row, err := r.scan(collection, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return result, nil
}

type metaCols struct {
	created, updated time.Time
	deleted          sql.NullTime
}

func (r *PostgresRepository) scan(collection string, s dbx.Scanner) (wire.Row, error) {
	var (
		meta  wire.Meta
		ts    metaCols
		desc  sql.NullString
		media sql.NullString
		tags  []string
		v     any
	)

	switch collection {
	case wire.Albums:
		var a wire.Album
		if err := s.Scan(&meta.ID, &meta.UserID, &meta.DeviceID, &meta.Version, &a.Name, &desc,
			r.tmap.SQLScanner(&tags), &ts.created, &ts.updated, &ts.deleted); err != nil {
			return nil, err
		}
		a.Description, a.Tags = nullString(desc), nonNil(tags)
		a.Meta = formatMeta(meta, ts)
		v = a
	case wire.Songs:
		var so wire.Song
		if err := s.Scan(&meta.ID, &meta.UserID, &meta.DeviceID, &meta.Version, &so.AlbumID, &so.Name, &desc,
			r.tmap.SQLScanner(&tags), &ts.created, &ts.updated, &ts.deleted); err != nil {
			return nil, err
		}
		so.Description, so.Tags = nullString(desc), nonNil(tags)
		so.Meta = formatMeta(meta, ts)
		v = so
	case wire.Messages:
		var m wire.Message
		if err := s.Scan(&meta.ID, &meta.UserID, &meta.DeviceID, &meta.Version, &m.SongID, &m.Content, &m.Type,
			&media, &ts.created, &ts.updated, &ts.deleted); err != nil {
			return nil, err
		}
		m.MediaURI = nullString(media)
		m.Meta = formatMeta(meta, ts)
		v = m
	}
	return wire.Encode(v)
}

type metaTimes struct {
	created, updated time.Time
	deleted          any
}

func parseMeta(m wire.Meta) (metaTimes, error) {
	var (
		ts  metaTimes
		err error
	)
	if ts.created, err = timex.ParseWire(m.CreatedAt); err != nil {
		return ts, fmt.Errorf("row %q created_at: %w", m.ID, err)
	}
	if ts.updated, err = timex.ParseWire(m.UpdatedAt); err != nil {
		return ts, fmt.Errorf("row %q updated_at: %w", m.ID, err)
	}
	if m.DeletedAt != nil && *m.DeletedAt != "" {
		d, err := timex.ParseWire(*m.DeletedAt)
		if err != nil {
			return ts, fmt.Errorf("row %q deleted_at: %w", m.ID, err)
		}
		ts.deleted = d
	}
	return ts, nil
}

func formatMeta(m wire.Meta, ts metaCols) wire.Meta {
	m.CreatedAt = timex.FormatTime(ts.created)
	m.UpdatedAt = timex.FormatTime(ts.updated)
	if ts.deleted.Valid {
		d := timex.FormatTime(ts.deleted.Time)
		m.DeletedAt = &d
	}
	return m
}

func expectOwned(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%w: %q", ErrOwnerConflict, id)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
