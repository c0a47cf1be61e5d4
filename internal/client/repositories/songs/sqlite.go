// Package songs is the SQLite persistence for song rows.
package songs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/columns"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/dbx"
)

const selectColumns = `id, user_id, album_id, name, description, tags, created_at, updated_at, device_id, version, deleted_at`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func args(s *models.Song) ([]any, error) {
	tags, err := columns.Tags(s.Tags)
	if err != nil {
		return nil, err
	}
	return []any{s.ID, s.UserID, s.AlbumID, s.Name, columns.NullString(s.Description), tags,
		s.CreatedAt, s.UpdatedAt, s.DeviceID, s.Version, columns.NullInt64(s.DeletedAt)}, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, s *models.Song) error {
	vals, err := args(s)
	if err != nil {
		return err
	}
	query := `INSERT INTO songs (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, s *models.Song) error {
	tags, err := columns.Tags(s.Tags)
	if err != nil {
		return err
	}
	query := `UPDATE songs SET album_id = ?, name = ?, description = ?, tags = ?, updated_at = ?,
			device_id = ?, version = ?, deleted_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.AlbumID, s.Name, columns.NullString(s.Description), tags, s.UpdatedAt,
		s.DeviceID, s.Version, columns.NullInt64(s.DeletedAt),
		s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	return dbx.ExpectOne(res)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, s *models.Song) error {
	vals, err := args(s)
	if err != nil {
		return err
	}
	query := `INSERT INTO songs (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			album_id = excluded.album_id,
			name = excluded.name,
			description = excluded.description,
			tags = excluded.tags,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			device_id = excluded.device_id,
			version = excluded.version,
			deleted_at = excluded.deleted_at`
	if _, err := r.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("failed to upsert song: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, owner, id string) (*models.Song, error) {
	query := `SELECT ` + selectColumns + ` FROM songs WHERE id = ? AND user_id = ? AND deleted_at IS NULL`
	return r.getOne(ctx, query, id, owner)
}

func (r *SQLiteRepository) GetAnyByID(ctx context.Context, id string) (*models.Song, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM songs WHERE id = ?`, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, args ...any) (*models.Song, error) {
	s, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) List(ctx context.Context, owner string, f models.SongFilter) ([]*models.Song, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + selectColumns + ` FROM songs WHERE user_id = ? AND deleted_at IS NULL`)
	params := []any{owner}
	if f.AlbumID != "" {
		sb.WriteString(` AND album_id = ?`)
		params = append(params, f.AlbumID)
	}
	if f.Tag != "" {
		sb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(songs.tags) WHERE json_each.value = ?)`)
		params = append(params, f.Tag)
	}
	sb.WriteString(` ORDER BY created_at, id`)

	rows, err := r.db.QueryContext(ctx, sb.String(), params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	var result []*models.Song
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate song rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) UpdatedAtIndex(ctx context.Context) (map[string]int64, error) {
	return dbx.UpdatedAtIndex(ctx, r.db, "songs")
}

func scan(row dbx.Scanner) (*models.Song, error) {
	var (
		s         models.Song
		desc      sql.NullString
		tags      string
		deletedAt sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.UserID, &s.AlbumID, &s.Name, &desc, &tags,
		&s.CreatedAt, &s.UpdatedAt, &s.DeviceID, &s.Version, &deletedAt)
	if err != nil {
		return nil, err
	}
	s.Description = columns.StringPtr(desc)
	s.DeletedAt = columns.Int64Ptr(deletedAt)
	if s.Tags, err = columns.ParseTags(tags); err != nil {
		return nil, err
	}
	return &s, nil
}
