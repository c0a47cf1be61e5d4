// Package messages is the SQLite persistence for song chat messages.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/columns"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/dbx"
)

const selectColumns = `id, user_id, song_id, content, type, media_uri, created_at, updated_at, device_id, version, deleted_at`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func args(m *models.Message) []any {
	return []any{m.ID, m.UserID, m.SongID, m.Content, string(m.Type), columns.NullString(m.MediaURI),
		m.CreatedAt, m.UpdatedAt, m.DeviceID, m.Version, columns.NullInt64(m.DeletedAt)}
}

func (r *SQLiteRepository) Insert(ctx context.Context, m *models.Message) error {
	query := `INSERT INTO messages (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args(m)...); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, m *models.Message) error {
	query := `UPDATE messages SET content = ?, type = ?, media_uri = ?, updated_at = ?,
			device_id = ?, version = ?, deleted_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		m.Content, string(m.Type), columns.NullString(m.MediaURI), m.UpdatedAt,
		m.DeviceID, m.Version, columns.NullInt64(m.DeletedAt),
		m.ID, m.UserID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return dbx.ExpectOne(res)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, m *models.Message) error {
	query := `INSERT INTO messages (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			song_id = excluded.song_id,
			content = excluded.content,
			type = excluded.type,
			media_uri = excluded.media_uri,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			device_id = excluded.device_id,
			version = excluded.version,
			deleted_at = excluded.deleted_at`
	if _, err := r.db.ExecContext(ctx, query, args(m)...); err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, owner, id string) (*models.Message, error) {
	query := `SELECT ` + selectColumns + ` FROM messages WHERE id = ? AND user_id = ? AND deleted_at IS NULL`
	return r.getOne(ctx, query, id, owner)
}

func (r *SQLiteRepository) GetAnyByID(ctx context.Context, id string) (*models.Message, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM messages WHERE id = ?`, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, args ...any) (*models.Message, error) {
	m, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) List(ctx context.Context, owner string, f models.MessageFilter) ([]*models.Message, error) {
	query := `SELECT ` + selectColumns + ` FROM messages WHERE user_id = ? AND deleted_at IS NULL`
	params := []any{owner}
	if f.SongID != "" {
		query += ` AND song_id = ?`
		params = append(params, f.SongID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) UpdatedAtIndex(ctx context.Context) (map[string]int64, error) {
	return dbx.UpdatedAtIndex(ctx, r.db, "messages")
}

func scan(row dbx.Scanner) (*models.Message, error) {
	var (
		m         models.Message
		typ       string
		mediaURI  sql.NullString
		deletedAt sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.UserID, &m.SongID, &m.Content, &typ, &mediaURI,
		&m.CreatedAt, &m.UpdatedAt, &m.DeviceID, &m.Version, &deletedAt)
	if err != nil {
		return nil, err
	}
	m.Type = models.MessageType(typ)
	m.MediaURI = columns.StringPtr(mediaURI)
	m.DeletedAt = columns.Int64Ptr(deletedAt)
	return &m, nil
}
