// Package albums is the SQLite persistence for album rows.
package albums

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

const selectColumns = `id, user_id, name, description, tags, created_at, updated_at, device_id, version, deleted_at`

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func args(a *models.Album) ([]any, error) {
	tags, err := columns.Tags(a.Tags)
	if err != nil {
		return nil, err
	}
	return []any{a.ID, a.UserID, a.Name, columns.NullString(a.Description), tags,
		a.CreatedAt, a.UpdatedAt, a.DeviceID, a.Version, columns.NullInt64(a.DeletedAt)}, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, a *models.Album) error {
	vals, err := args(a)
	if err != nil {
		return err
	}
	query := `INSERT INTO albums (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("failed to insert album: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, a *models.Album) error {
	tags, err := columns.Tags(a.Tags)
	if err != nil {
		return err
	}
	query := `UPDATE albums SET name = ?, description = ?, tags = ?, updated_at = ?,
			device_id = ?, version = ?, deleted_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		a.Name, columns.NullString(a.Description), tags, a.UpdatedAt,
		a.DeviceID, a.Version, columns.NullInt64(a.DeletedAt),
		a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}
	return dbx.ExpectOne(res)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, a *models.Album) error {
	vals, err := args(a)
	if err != nil {
		return err
	}
	query := `INSERT INTO albums (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			description = excluded.description,
			tags = excluded.tags,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			device_id = excluded.device_id,
			version = excluded.version,
			deleted_at = excluded.deleted_at`
	if _, err := r.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("failed to upsert album: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, owner, id string) (*models.Album, error) {
	query := `SELECT ` + selectColumns + ` FROM albums WHERE id = ? AND user_id = ? AND deleted_at IS NULL`
	return r.getOne(ctx, query, id, owner)
}

func (r *SQLiteRepository) GetAnyByID(ctx context.Context, id string) (*models.Album, error) {
	query := `SELECT ` + selectColumns + ` FROM albums WHERE id = ?`
	return r.getOne(ctx, query, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, args ...any) (*models.Album, error) {
	a, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) List(ctx context.Context, owner string, f models.AlbumFilter) ([]*models.Album, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + selectColumns + ` FROM albums WHERE user_id = ? AND deleted_at IS NULL`)
	params := []any{owner}
	if f.NameContains != "" {
		sb.WriteString(` AND instr(lower(name), lower(?)) > 0`)
		params = append(params, f.NameContains)
	}
	if f.Tag != "" {
		sb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(albums.tags) WHERE json_each.value = ?)`)
		params = append(params, f.Tag)
	}
	sb.WriteString(` ORDER BY created_at, id`)

	rows, err := r.db.QueryContext(ctx, sb.String(), params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	defer rows.Close()

	var result []*models.Album
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album row: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate album rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) UpdatedAtIndex(ctx context.Context) (map[string]int64, error) {
	return dbx.UpdatedAtIndex(ctx, r.db, "albums")
}

func scan(s dbx.Scanner) (*models.Album, error) {
	var (
		a         models.Album
		desc      sql.NullString
		tags      string
		deletedAt sql.NullInt64
	)
	err := s.Scan(&a.ID, &a.UserID, &a.Name, &desc, &tags,
		&a.CreatedAt, &a.UpdatedAt, &a.DeviceID, &a.Version, &deletedAt)
	if err != nil {
		return nil, err
	}
	a.Description = columns.StringPtr(desc)
	a.DeletedAt = columns.Int64Ptr(deletedAt)
	if a.Tags, err = columns.ParseTags(tags); err != nil {
		return nil, err
	}
	return &a, nil
}
