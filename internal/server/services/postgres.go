package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/dbx"
	"github.com/dmitrijs2005/offsync/internal/remote"
	"github.com/dmitrijs2005/offsync/internal/server/repositories/rows"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

var _ remote.Store = (*PostgresStore)(nil)

// PostgresStore is the durable backend: each Upsert batch runs in one
// transaction so a rejected row leaves no partial writes behind.
type PostgresStore struct {
	db      *sql.DB
	newRepo func(dbx.DBTX) rows.Repository
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		newRepo: func(tx dbx.DBTX) rows.Repository { return rows.NewPostgresRepository(tx) },
	}
}

func (s *PostgresStore) Upsert(ctx context.Context, collection string, batch []wire.Row) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		for _, r := range batch {
			if err := upsertOne(ctx, repo, collection, r); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, rows.ErrOwnerConflict) {
		return fmt.Errorf("%w: %w", common.ErrRemoteRejected, err)
	}
	return err
}

func (s *PostgresStore) Select(ctx context.Context, collection string, f remote.Filter) ([]wire.Row, error) {
	return s.newRepo(s.db).SelectUpdated(ctx, collection, f.Owner, f.UpdatedAfter)
}

func upsertOne(ctx context.Context, repo rows.Repository, collection string, r wire.Row) error {
	switch collection {
	case wire.Albums:
		var a wire.Album
		if err := wire.Decode(r, &a); err != nil {
			return err
		}
		return repo.UpsertAlbum(ctx, &a)
	case wire.Songs:
		var so wire.Song
		if err := wire.Decode(r, &so); err != nil {
			return err
		}
		return repo.UpsertSong(ctx, &so)
	case wire.Messages:
		var m wire.Message
		if err := wire.Decode(r, &m); err != nil {
			return err
		}
		return repo.UpsertMessage(ctx, &m)
	default:
		return fmt.Errorf("%w: %q", common.ErrUnknownCollection, collection)
	}
}
