// Package postgres implements the remote record store over PostgreSQL
// (jackc/pgx stdlib driver). Every row is tagged with an opaque user id;
// the tag exists only inside this package and never appears on the model
// types, so it cannot leak into backups or the local store.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/RyRy79261/intake-tracker-sub000/internal/dbx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store wraps the shared database handle. Use ForUser to obtain a
// store.RecordStore view bound to one user.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to the PostgreSQL database at dsn, applies pending
// migrations, and returns the store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
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
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ForUser returns a RecordStore view scoped to the given user id. The view
// shares the underlying handle and is cheap to create per call.
func (s *Store) ForUser(userID string) *UserStore {
	return &UserStore{db: s.db, userID: userID}
}

// UserStore implements store.RecordStore for a single user's rows.
type UserStore struct {
	db     *sql.DB
	userID string
}

func (s *UserStore) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// rebind rewrites ? placeholders to the $1..$n form pgx expects. Queries in
// this package are written with ? so the builders can stay positional.
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
