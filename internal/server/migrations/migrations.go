// Package migrations embeds the server's PostgreSQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// newProvider is a seam for tests.
var newProvider = func(db *sql.DB) (upper, error) {
	return goose.NewProvider(goose.DialectPostgres, db, Migrations)
}

type upper interface {
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	p, err := newProvider(db)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
