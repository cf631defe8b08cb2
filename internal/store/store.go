// Package store defines the capability interface shared by the local and
// remote record stores. Callers obtain an implementation from the router and
// never branch on which backend is active.
package store

import (
	"context"

	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

// Cursor is a keyset-pagination position: records strictly before
// (Timestamp, ID) in descending (timestamp, id) order belong to later pages.
type Cursor struct {
	Timestamp int64  `json:"timestamp"`
	ID        string `json:"id"`
}

// Page is one page of records in timestamp-descending order. NextCursor is
// nil when the stream is exhausted.
type Page struct {
	Records    []models.Record
	NextCursor *Cursor
}

// RecordStore is the storage contract implemented by both backends.
//
// Add fails with common.ErrDuplicateID when a record with the same id already
// exists; it never overwrites silently. Update and Delete fail with
// common.ErrNotFound for missing ids.
type RecordStore interface {
	Add(ctx context.Context, rec models.Record) error
	Update(ctx context.Context, rec models.Record) error
	Delete(ctx context.Context, kind models.Kind, id string) error

	// ListSince returns all records of kind with timestamp >= since
	// (milliseconds since epoch), newest first.
	ListSince(ctx context.Context, kind models.Kind, since int64) ([]models.Record, error)

	// ListAll returns every record of kind, newest first.
	ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error)

	// ListPage returns up to limit records strictly before the cursor,
	// newest first. A nil cursor starts from the newest record.
	ListPage(ctx context.Context, kind models.Kind, before *Cursor, limit int) (*Page, error)

	// ExistingIDs reports which of the given ids are already present in the
	// kind's collection. Used for batch dedup during merge imports.
	ExistingIDs(ctx context.Context, kind models.Kind, ids []string) (map[string]struct{}, error)

	// Clear deletes every record of the given kinds; with no kinds it clears
	// all record collections. Audit entries and settings are not touched.
	Clear(ctx context.Context, kinds ...models.Kind) error

	Settings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error

	AppendAudit(ctx context.Context, entries []models.AuditLogEntry) error
	RecentAudit(ctx context.Context, limit int) ([]models.AuditLogEntry, error)

	// PurgeAudit deletes audit entries with timestamp < before and returns
	// how many were removed.
	PurgeAudit(ctx context.Context, before int64) (int64, error)
}
