// Package ledger is the caller-facing surface of the health-event ledger.
// It wires the storage router, the window-total cache, the audit buffer, and
// the backup engine into one Service. Callers pass the current storage mode
// and credential explicitly on every call; nothing here reads ambient state.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RyRy79261/intake-tracker-sub000/internal/aggregate"
	"github.com/RyRy79261/intake-tracker-sub000/internal/audit"
	"github.com/RyRy79261/intake-tracker-sub000/internal/backup"
	"github.com/RyRy79261/intake-tracker-sub000/internal/config"
	"github.com/RyRy79261/intake-tracker-sub000/internal/logging"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
	"github.com/RyRy79261/intake-tracker-sub000/internal/router"
	"github.com/RyRy79261/intake-tracker-sub000/internal/store"
	"github.com/RyRy79261/intake-tracker-sub000/internal/store/postgres"
	"github.com/RyRy79261/intake-tracker-sub000/internal/store/sqlite"
)

// Service exposes record CRUD, aggregate queries, pagination, audit, and
// bulk import/export over whichever backend the per-call config selects.
type Service struct {
	cfg    *config.Config
	log    logging.Logger
	rt     *router.Router
	local  *sqlite.Store
	remote *postgres.Store
	engine *backup.Engine
	buffer *audit.Buffer
	sink   *routedSink
	cache  *aggregate.Cache

	mu      sync.Mutex
	current router.Config
}

// New opens the local store (always) and the remote store (when a DSN is
// configured) and assembles the service. Call Close when done.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*Service, error) {
	local, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	var remote *postgres.Store
	if cfg.DatabaseDSN != "" {
		remote, err = postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			_ = local.Close()
			return nil, err
		}
	}

	s := &Service{
		cfg:     cfg,
		log:     log,
		local:   local,
		remote:  remote,
		rt:      router.New(local, remote, []byte(cfg.SecretKey)),
		engine:  backup.NewEngine(log),
		current: router.Config{Mode: router.ModeLocal},
	}
	s.sink = &routedSink{svc: s}
	s.buffer = audit.NewBuffer(s.sink, cfg.AuditFlushDelay, log)

	settings, err := local.Settings(ctx)
	if err != nil {
		settings = models.DefaultSettings()
	}
	s.cache = aggregate.NewCache(s.intakeSource, settings.DayStartHour)

	return s, nil
}

// Run drives the periodic invalidation of cached totals until ctx is done.
// Run it in its own goroutine; it is independent of in-flight operations.
func (s *Service) Run(ctx context.Context) {
	s.cache.Run(ctx, s.cfg.AggregateRefresh)
}

// Close flushes the audit buffer and closes both backends.
func (s *Service) Close(ctx context.Context) error {
	s.buffer.Close(ctx)
	err := s.local.Close()
	if s.remote != nil {
		if cerr := s.remote.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// resolve selects the backend for rc, remembering the last good selection
// for the audit sink and invalidating cached totals on a mode change.
func (s *Service) resolve(rc router.Config) (store.RecordStore, error) {
	st, err := s.rt.Resolve(rc)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	switched := s.current.Mode != rc.Mode && rc.Mode != ""
	s.current = rc
	s.mu.Unlock()

	if switched {
		s.cache.Invalidate()
		s.buffer.Record(models.AuditModeSwitch, string(rc.Mode))
	}
	return st, nil
}

func (s *Service) currentConfig() router.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Service) intakeSource(ctx context.Context, since int64) ([]models.Record, error) {
	st, err := s.rt.Resolve(s.currentConfig())
	if err != nil {
		return nil, err
	}
	return st.ListSince(ctx, models.KindIntake, since)
}

// routedSink writes audit batches to the last successfully selected
// backend, falling back to the local store when the remote selection can no
// longer be resolved. Audit writes must never fail the primary operation.
type routedSink struct {
	svc *Service
}

func (r *routedSink) resolve() store.RecordStore {
	st, err := r.svc.rt.Resolve(r.svc.currentConfig())
	if err != nil {
		return r.svc.rt.Local()
	}
	return st
}

func (r *routedSink) AppendAudit(ctx context.Context, entries []models.AuditLogEntry) error {
	return r.resolve().AppendAudit(ctx, entries)
}

func (r *routedSink) PurgeAudit(ctx context.Context, before int64) (int64, error) {
	return r.resolve().PurgeAudit(ctx, before)
}

// AddRecord appends a record to the ledger. A zero id or timestamp should be
// filled by the caller via models.NewBase before reaching here.
func (s *Service) AddRecord(ctx context.Context, rc router.Config, rec models.Record) error {
	st, err := s.resolve(rc)
	if err != nil {
		return err
	}
	if err := st.Add(ctx, rec); err != nil {
		return err
	}
	s.buffer.Record(models.AuditRecordAdd, fmt.Sprintf("%s %s", rec.RecordKind(), rec.RecordID()))
	s.cache.Invalidate()
	return nil
}

// UpdateRecord rewrites a record in place. The edit may move the record
// across an aggregation window, so cached totals are invalidated.
func (s *Service) UpdateRecord(ctx context.Context, rc router.Config, rec models.Record) error {
	st, err := s.resolve(rc)
	if err != nil {
		return err
	}
	if err := st.Update(ctx, rec); err != nil {
		return err
	}
	s.buffer.Record(models.AuditRecordUpdate, fmt.Sprintf("%s %s", rec.RecordKind(), rec.RecordID()))
	s.cache.Invalidate()
	return nil
}

func (s *Service) DeleteRecord(ctx context.Context, rc router.Config, kind models.Kind, id string) error {
	st, err := s.resolve(rc)
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.buffer.Record(models.AuditRecordDelete, fmt.Sprintf("%s %s", kind, id))
	s.cache.Invalidate()
	return nil
}

// History returns one page of the timestamp-descending record stream.
func (s *Service) History(ctx context.Context, rc router.Config, kind models.Kind, before *store.Cursor, limit int) (*store.Page, error) {
	st, err := s.resolve(rc)
	if err != nil {
		return nil, err
	}
	return st.ListPage(ctx, kind, before, limit)
}

// Totals returns the cached rolling-24h and logical-day intake sums.
func (s *Service) Totals(ctx context.Context, rc router.Config) (*aggregate.Snapshot, error) {
	if _, err := s.resolve(rc); err != nil {
		return nil, err
	}
	return s.cache.Totals(ctx)
}

func (s *Service) Settings(ctx context.Context, rc router.Config) (*models.Settings, error) {
	st, err := s.resolve(rc)
	if err != nil {
		return nil, err
	}
	return st.Settings(ctx)
}

func (s *Service) SaveSettings(ctx context.Context, rc router.Config, set *models.Settings) error {
	st, err := s.resolve(rc)
	if err != nil {
		return err
	}
	if err := st.SaveSettings(ctx, set); err != nil {
		return err
	}
	s.buffer.Record(models.AuditSettingsUpdate, "")
	s.cache.SetDayStartHour(set.DayStartHour)
	return nil
}

// PurgeAudit removes audit entries older than the configured retention.
func (s *Service) PurgeAudit(ctx context.Context, rc router.Config) (int64, error) {
	if _, err := s.resolve(rc); err != nil {
		return 0, err
	}
	n, err := s.buffer.Purge(ctx, s.cfg.RetentionDays)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.buffer.Record(models.AuditRetentionPurge, fmt.Sprintf("%d entries", n))
	}
	return n, nil
}

// RecentAudit is a diagnostic read: it races the store against the timeout
// and returns nil when the deadline passes first. Mutating operations never
// use this pattern; a write is never abandoned once issued.
func (s *Service) RecentAudit(ctx context.Context, rc router.Config, limit int, timeout time.Duration) []models.AuditLogEntry {
	st, err := s.resolve(rc)
	if err != nil {
		return nil
	}

	type result struct {
		entries []models.AuditLogEntry
		err     error
	}
	ch := make(chan result, 1)

	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	go func() {
		entries, err := st.RecentAudit(readCtx, limit)
		ch <- result{entries: entries, err: err}
	}()

	select {
	case <-readCtx.Done():
		return nil
	case res := <-ch:
		if res.err != nil {
			s.log.Warn(ctx, "recent audit read failed", "error", res.err)
			return nil
		}
		return res.entries
	}
}
