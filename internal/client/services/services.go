// Package services holds the entity services: the only code paths that
// mutate entity rows. Every mutation writes the row and its outbox entry in
// one local transaction; nothing here touches the network.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
)

// Identity names the caller of a mutation. An empty Owner means nobody is
// signed in and every operation fails with common.ErrUnauthenticated.
type Identity struct {
	Owner    string
	DeviceID string
}

// Options are shared by every service constructor.
type Options struct {
	Store    *store.Store
	Identity Identity
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger logging.Logger
}

type base struct {
	store *store.Store
	id    Identity
	now   func() time.Time
	log   logging.Logger
}

func newBase(o Options, module string) base {
	b := base{store: o.Store, id: o.Identity, now: o.Now, log: o.Logger}
	if b.now == nil {
		b.now = time.Now
	}
	if b.log == nil {
		b.log = logging.Nop()
	}
	b.log = b.log.With("module", module)
	return b
}

func (b *base) owner() (string, error) {
	if b.id.Owner == "" {
		return "", common.ErrUnauthenticated
	}
	return b.id.Owner, nil
}

// mutation loads or builds a row, changes it and writes it. It returns the
// resulting full row, which becomes the outbox snapshot.
type mutation func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error)

func (b *base) mutate(ctx context.Context, kind models.OpKind, fn mutation) (models.Entity, error) {
	owner, err := b.owner()
	if err != nil {
		return nil, err
	}
	var result models.Entity
	err = b.store.Update(ctx, func(ctx context.Context, r *store.Repos) error {
		// Read under the writer lock so a later mutation never sees an
		// earlier clock than the one before it.
		now := b.now().UnixMilli()
		e, err := fn(ctx, r, owner, now)
		if err != nil {
			return err
		}
		entry, err := models.NewOutboxEntry(e, kind, e.Header().UpdatedAt)
		if err != nil {
			return err
		}
		if err := r.Outbox.Append(ctx, entry); err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Debug(ctx, "local mutation", "collection", result.Collection(), "id", result.Header().ID,
		"kind", kind, "version", result.Header().Version)
	return result, nil
}

// newMeta returns the header of a freshly created row.
func (b *base) newMeta(id, owner string, now int64) models.Meta {
	return models.Meta{
		ID:        id,
		UserID:    owner,
		CreatedAt: now,
		UpdatedAt: now,
		DeviceID:  b.id.DeviceID,
	}
}

func (b *base) view(ctx context.Context, fn func(ctx context.Context, r *store.Repos, owner string) error) error {
	owner, err := b.owner()
	if err != nil {
		return err
	}
	return b.store.View(ctx, func(ctx context.Context, r *store.Repos) error {
		return fn(ctx, r, owner)
	})
}
