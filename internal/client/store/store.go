// Package store owns the local SQLite database: it opens and migrates it,
// vends repositories, and runs writes as serialized transactions so that an
// entity row and its outbox entry always commit together.
//
// # Concurrency
//
// Update holds a process-wide writer lock for the duration of the
// transaction, which makes "read row, compute next version, write row, append
// outbox" atomic with respect to every other writer in the process. View
// runs without the lock.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/offsync/internal/client/migrations"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/albums"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/cursors"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/messages"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/songs"
	"github.com/dmitrijs2005/offsync/internal/dbx"
	"github.com/dmitrijs2005/offsync/internal/filex"
	"github.com/google/uuid"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Repos groups the repositories bound to one DBTX.
type Repos struct {
	Albums   albums.Repository
	Songs    songs.Repository
	Messages messages.Repository
	Outbox   outbox.Repository
	Cursors  cursors.Repository
	Metadata metadata.Repository
}

// NewRepos binds every repository to db, which may be a *sql.DB or *sql.Tx.
func NewRepos(db dbx.DBTX) *Repos {
	return &Repos{
		Albums:   albums.NewSQLiteRepository(db),
		Songs:    songs.NewSQLiteRepository(db),
		Messages: messages.NewSQLiteRepository(db),
		Outbox:   outbox.NewSQLiteRepository(db),
		Cursors:  cursors.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) and migrates the database at path.
// ":memory:" yields a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if !isMemory(path) && !strings.HasPrefix(path, "file:") {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("failed to prepare local store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if isMemory(path) {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// DSN builds the driver connection string for path with the pragmas the
// store relies on.
func DSN(path string) string {
	if isMemory(path) {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(0)&_txlock=immediate"
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Update runs fn inside one write transaction under the writer lock.
// fn must not call Update or View on the same Store.
func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, r *Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewRepos(tx))
	})
}

// View runs read-only work against the database.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, r *Repos) error) error {
	return fn(ctx, NewRepos(s.db))
}

// DeviceID returns the persisted device identifier, creating one on first
// use. A non-empty override replaces the stored value.
func (s *Store) DeviceID(ctx context.Context, override string) (string, error) {
	var id string
	err := s.Update(ctx, func(ctx context.Context, r *Repos) error {
		if override != "" {
			id = override
			return r.Metadata.Set(ctx, metadata.KeyDeviceID, []byte(id))
		}
		v, err := r.Metadata.Get(ctx, metadata.KeyDeviceID)
		if err != nil {
			return err
		}
		if len(v) > 0 {
			id = string(v)
			return nil
		}
		id = uuid.NewString()
		return r.Metadata.Set(ctx, metadata.KeyDeviceID, []byte(id))
	})
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("empty device id")
	}
	return id, nil
}
