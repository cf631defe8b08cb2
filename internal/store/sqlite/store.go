// Package sqlite implements the local embedded record store over a
// SQLite database (modernc.org/sqlite, pure Go). The schema is versioned
// with goose migrations embedded in the binary; migrations are additive so
// existing collections never require destructive changes.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/RyRy79261/intake-tracker-sub000/internal/dbx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is the local RecordStore backed by SQLite.
type Store struct {
	db *sql.DB
}

// New returns a Store bound to an already-open database handle. The caller
// is responsible for running Migrate first.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if needed) the SQLite database at dsn, applies
// pending migrations, and returns the store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// An in-memory database is private to its connection; a pool of them
	// would each see an empty schema.
	if strings.Contains(dsn, ":memory:") && !strings.Contains(dsn, "cache=shared") {
		db.SetMaxOpenConns(1)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// Migrate applies all pending schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}
