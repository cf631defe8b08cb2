// Package audit batches discrete audit events into periodic bulk writes.
// Recording never blocks the caller and flush failures are swallowed: the
// audit trail is diagnostic and must not break the operation it observes.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/RyRy79261/intake-tracker-sub000/internal/logging"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

const (
	// DefaultFlushDelay is how long the buffer coalesces events before
	// writing them as one batch.
	DefaultFlushDelay = time.Second

	// DefaultRetentionDays is the purge cutoff when the caller has not
	// configured one.
	DefaultRetentionDays = 90
)

// Sink receives flushed batches. Both record stores satisfy this.
type Sink interface {
	AppendAudit(ctx context.Context, entries []models.AuditLogEntry) error
	PurgeAudit(ctx context.Context, before int64) (int64, error)
}

// Buffer coalesces audit events. State machine: idle → pending (first
// Record) → flushing (timer fire) → idle. A Record arriving during a flush
// simply appends; the flush writes only the snapshot it took.
type Buffer struct {
	mu      sync.Mutex
	pending []models.AuditLogEntry
	timer   *time.Timer

	sink  Sink
	delay time.Duration
	log   logging.Logger
	wg    sync.WaitGroup
}

func NewBuffer(sink Sink, delay time.Duration, log logging.Logger) *Buffer {
	if delay <= 0 {
		delay = DefaultFlushDelay
	}
	return &Buffer{sink: sink, delay: delay, log: log}
}

// Record appends an event to the buffer and arms the flush timer if one is
// not already pending. Details beyond models.MaxAuditDetails are truncated
// rather than rejected.
func (b *Buffer) Record(action models.AuditAction, details string) {
	if len(details) > models.MaxAuditDetails {
		details = details[:models.MaxAuditDetails]
	}
	entry := models.AuditLogEntry{
		ID:        models.NewID(),
		Timestamp: time.Now().UnixMilli(),
		Action:    action,
		Details:   details,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, entry)
	if b.timer == nil {
		b.wg.Add(1)
		b.timer = time.AfterFunc(b.delay, b.flushAsync)
	}
}

func (b *Buffer) flushAsync() {
	defer b.wg.Done()
	b.flush(context.Background())
}

// flush swaps out the pending snapshot under the lock, then writes it
// outside the lock. Events recorded mid-write land in the next batch.
func (b *Buffer) flush(ctx context.Context) {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.timer = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := b.sink.AppendAudit(ctx, batch); err != nil {
		b.log.Warn(ctx, "audit flush failed", "entries", len(batch), "error", err)
	}
}

// Flush forces an immediate write of everything buffered so far.
func (b *Buffer) Flush(ctx context.Context) {
	b.mu.Lock()
	if b.timer != nil && b.timer.Stop() {
		b.timer = nil
		b.wg.Done()
	}
	b.mu.Unlock()

	b.flush(ctx)
}

// Close flushes remaining events and waits for any in-flight timer flush.
func (b *Buffer) Close(ctx context.Context) {
	b.Flush(ctx)
	b.wg.Wait()
}

// Purge deletes audit entries older than retentionDays. Run on demand or on
// whatever schedule the caller sets up.
func (b *Buffer) Purge(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).UnixMilli()
	return b.sink.PurgeAudit(ctx, cutoff)
}
