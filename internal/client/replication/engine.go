// Package replication synchronizes the local store with the remote store.
//
// A sync pass pushes every collection's outbox (albums, songs, messages, in
// that order) and then pulls remote changes for the same collections,
// reconciling them with last-write-wins on updatedAt where ties go to the
// remote row.
//
// Push is all-or-nothing per collection: outbox entries are deleted only
// after the remote accepted the whole batch, so a failed pass leaves
// everything in place for the next one. Pull writes the applied rows and the
// advanced cursor in one local transaction; a failed remote call changes
// nothing.
//
// Concurrent SyncAll calls for the same owner share one in-flight pass, and
// all passes, pushes and pulls are serialized.
package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/reachability"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/remote"
	"github.com/dmitrijs2005/offsync/internal/wire"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

type Engine struct {
	store       *store.Store
	remote      remote.Store
	online      reachability.Signal
	media       MediaUploader
	collections []string
	now         func() time.Time
	log         logging.Logger

	group singleflight.Group
	// pass serializes every push and pull against the local store.
	pass sync.Mutex
}

type Option func(*Engine)

func WithMediaUploader(u MediaUploader) Option { return func(e *Engine) { e.media = u } }

func WithLogger(l logging.Logger) Option { return func(e *Engine) { e.log = l } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithCollections overrides the collection order of a pass.
func WithCollections(names ...string) Option {
	return func(e *Engine) { e.collections = append([]string(nil), names...) }
}

func NewEngine(st *store.Store, rs remote.Store, online reachability.Signal, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		remote:      rs,
		online:      online,
		collections: append([]string(nil), wire.Collections...),
		now:         time.Now,
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("module", "replication")
	return e
}

// Report summarizes one SyncAll call.
type Report struct {
	// Ran is false when the pass was skipped (no owner or offline).
	Ran    bool
	Pushes []PushResult
	Pulls  []PullResult
}

// SyncAll runs a full pass for owner. Without an owner or while offline it
// returns immediately with a nil error and makes no remote calls. Failures
// are isolated per collection and returned together; unreachable-remote
// failures are logged but not returned.
func (e *Engine) SyncAll(ctx context.Context, owner string) (*Report, error) {
	if owner == "" {
		e.log.Debug(ctx, "sync skipped: no owner")
		return &Report{}, nil
	}
	if !e.online.IsOnline() {
		e.log.Debug(ctx, "sync skipped: offline")
		return &Report{}, nil
	}

	v, err, shared := e.group.Do(owner, func() (any, error) {
		return e.syncPass(ctx, owner)
	})
	if shared {
		e.log.Debug(ctx, "joined in-flight sync pass", "owner", owner)
	}
	rep, _ := v.(*Report)
	if rep == nil {
		rep = &Report{}
	}
	return rep, err
}

func (e *Engine) syncPass(ctx context.Context, owner string) (*Report, error) {
	e.pass.Lock()
	defer e.pass.Unlock()

	started := e.now()
	rep := &Report{Ran: true}
	var errs error

	for _, name := range e.collections {
		res, err := e.push(ctx, owner, name)
		rep.Pushes = append(rep.Pushes, res)
		errs = multierr.Append(errs, e.passError(ctx, err))
	}
	for _, name := range e.collections {
		res, err := e.pull(ctx, owner, name)
		rep.Pulls = append(rep.Pulls, res)
		errs = multierr.Append(errs, e.passError(ctx, err))
	}

	if errs == nil {
		e.recordLastSync(ctx, started)
	}
	e.log.Info(ctx, "sync pass finished", "owner", owner, "took", e.now().Sub(started), "errors", len(multierr.Errors(errs)))
	return rep, errs
}

func (e *Engine) passError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrUnreachable) {
		e.log.Warn(ctx, "remote unreachable during sync pass", "error", err)
		return nil
	}
	e.log.Error(ctx, "sync step failed", "error", err)
	return err
}

func (e *Engine) recordLastSync(ctx context.Context, at time.Time) {
	err := e.store.Update(ctx, func(ctx context.Context, r *store.Repos) error {
		return metadata.SetTime(ctx, r.Metadata, metadata.KeyLastSync, at)
	})
	if err != nil {
		e.log.Warn(ctx, "failed to record last sync time", "error", err)
	}
}

// Push drains one collection's outbox. Unlike SyncAll it does not consult
// reachability and returns every error.
func (e *Engine) Push(ctx context.Context, owner, collection string) (PushResult, error) {
	if err := e.checkGranular(owner, collection); err != nil {
		return PushResult{Collection: collection}, err
	}
	e.pass.Lock()
	defer e.pass.Unlock()
	return e.push(ctx, owner, collection)
}

// Pull fetches and reconciles one collection.
func (e *Engine) Pull(ctx context.Context, owner, collection string) (PullResult, error) {
	if err := e.checkGranular(owner, collection); err != nil {
		return PullResult{Collection: collection}, err
	}
	e.pass.Lock()
	defer e.pass.Unlock()
	return e.pull(ctx, owner, collection)
}

func (e *Engine) checkGranular(owner, collection string) error {
	if owner == "" {
		return common.ErrUnauthenticated
	}
	if _, err := lookup(collection); err != nil {
		return err
	}
	return nil
}

// Collections returns the pass order.
func (e *Engine) Collections() []string {
	return append([]string(nil), e.collections...)
}

func (r *Report) String() string {
	if !r.Ran {
		return "sync skipped"
	}
	var pushed, applied int
	for _, p := range r.Pushes {
		pushed += p.Rows
	}
	for _, p := range r.Pulls {
		applied += p.Applied
	}
	return fmt.Sprintf("pushed %d rows, applied %d remote rows", pushed, applied)
}
