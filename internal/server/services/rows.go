// Package services holds the server's row service: validation of incoming
// wire rows in front of a storage backend (PostgreSQL or in-memory).
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/remote"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

var _ remote.Store = (*RowService)(nil)

type RowService struct {
	backend  remote.Store
	validate *validator.Validate
	logger   logging.Logger
}

func NewRowService(backend remote.Store, l logging.Logger) *RowService {
	return &RowService{
		backend:  backend,
		validate: wire.NewValidator(),
		logger:   l.With("module", "row_service"),
	}
}

// Upsert validates every row of the batch and hands the batch to the backend.
// Nothing is written when any row is invalid.
func (s *RowService) Upsert(ctx context.Context, collection string, rows []wire.Row) error {
	if !wire.Known(collection) {
		return fmt.Errorf("%w: %w %q", common.ErrRemoteRejected, common.ErrUnknownCollection, collection)
	}
	for _, r := range rows {
		if err := s.validateRow(ctx, collection, r); err != nil {
			s.logger.Warn(ctx, "rejected row", "collection", collection, "id", r.ID(), "error", err)
			return err
		}
	}

	if err := s.backend.Upsert(ctx, collection, rows); err != nil {
		if errors.Is(err, common.ErrRemoteRejected) {
			return err
		}
		return fmt.Errorf("upsert %s: %w", collection, err)
	}
	s.logger.Debug(ctx, "rows upserted", "collection", collection, "count", len(rows))
	return nil
}

func (s *RowService) Select(ctx context.Context, collection string, f remote.Filter) ([]wire.Row, error) {
	if !wire.Known(collection) {
		return nil, fmt.Errorf("%w: %w %q", common.ErrRemoteRejected, common.ErrUnknownCollection, collection)
	}
	rows, err := s.backend.Select(ctx, collection, f)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	return rows, nil
}

func (s *RowService) validateRow(ctx context.Context, collection string, r wire.Row) error {
	typed, err := wire.NewTyped(collection)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrRemoteRejected, err)
	}
	if err := wire.Decode(r, typed); err != nil {
		return fmt.Errorf("%w: %w", common.ErrRemoteRejected, err)
	}
	if err := s.validate.StructCtx(ctx, typed); err != nil {
		return fmt.Errorf("%w: row %q: %w", common.ErrRemoteRejected, r.ID(), err)
	}
	return nil
}
