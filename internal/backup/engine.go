package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
	"github.com/RyRy79261/intake-tracker-sub000/internal/logging"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
	"github.com/RyRy79261/intake-tracker-sub000/internal/store"
)

// Strategy selects how import treats pre-existing records.
type Strategy string

const (
	// Merge skips any record whose id already exists at the destination.
	Merge Strategy = "merge"
	// Replace clears the destination collections first, then loads
	// everything unconditionally.
	Replace Strategy = "replace"
)

// Result reports one bulk operation. Per-record failures are counted, never
// thrown: partial success is the designed behavior.
type Result struct {
	Imported int
	Skipped  int
	Errors   []string
}

// Engine drives export, import, and migration.
type Engine struct {
	log logging.Logger
	now func() time.Time
}

func NewEngine(log logging.Logger) *Engine {
	return &Engine{log: log, now: time.Now}
}

// Export collects every record of every kind plus the settings snapshot into
// a full (version 3) document.
func (e *Engine) Export(ctx context.Context, src store.RecordStore) (*Document, error) {
	doc := &Document{
		Version:    VersionFull,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
	}

	for _, kind := range models.Kinds() {
		records, err := src.ListAll(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s records: %w", kind, err)
		}
		for _, rec := range records {
			doc.add(rec)
		}
	}

	settings, err := src.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}
	doc.Settings = settings

	return doc, nil
}

// ExportIntake collects only the intake ledger into a version 2 document.
func (e *Engine) ExportIntake(ctx context.Context, src store.RecordStore) (*Document, error) {
	doc := &Document{
		Version:    VersionIntakeOnly,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
	}
	records, err := src.ListAll(ctx, models.KindIntake)
	if err != nil {
		return nil, fmt.Errorf("failed to export intake records: %w", err)
	}
	for _, rec := range records {
		doc.add(rec)
	}
	return doc, nil
}

func (d *Document) add(rec models.Record) {
	switch r := rec.(type) {
	case models.IntakeRecord:
		d.IntakeRecords = append(d.IntakeRecords, r)
	case models.WeightRecord:
		d.WeightRecords = append(d.WeightRecords, r)
	case models.BloodPressureRecord:
		d.BloodPressureRecords = append(d.BloodPressureRecords, r)
	case models.EatingRecord:
		d.EatingRecords = append(d.EatingRecords, r)
	case models.UrinationRecord:
		d.UrinationRecords = append(d.UrinationRecords, r)
	}
}

// batch is one kind's worth of records to load, keeping the source array
// name for index-tagged error messages.
type batch struct {
	field   string
	kind    models.Kind
	records []models.Record
}

func (d *Document) batches() []batch {
	out := make([]batch, 0, 5)

	intake := batch{field: "intakeRecords", kind: models.KindIntake}
	for _, r := range d.IntakeRecords {
		intake.records = append(intake.records, r)
	}
	out = append(out, intake)

	weight := batch{field: "weightRecords", kind: models.KindWeight}
	for _, r := range d.WeightRecords {
		weight.records = append(weight.records, r)
	}
	out = append(out, weight)

	bp := batch{field: "bloodPressureRecords", kind: models.KindBloodPressure}
	for _, r := range d.BloodPressureRecords {
		bp.records = append(bp.records, r)
	}
	out = append(out, bp)

	eating := batch{field: "eatingRecords", kind: models.KindEating}
	for _, r := range d.EatingRecords {
		eating.records = append(eating.records, r)
	}
	out = append(out, eating)

	urination := batch{field: "urinationRecords", kind: models.KindUrination}
	for _, r := range d.UrinationRecords {
		urination.records = append(urination.records, r)
	}
	out = append(out, urination)

	return out
}

// Import loads a parsed document into dst. Malformed records and per-record
// insert failures are counted as skipped and the batch continues; only the
// caller's earlier Parse can hard-fail.
//
// Merge does a batched id-set lookup per kind before the insert loop; the
// stores' atomic insert-if-absent still backstops any id that appears
// between the check and the insert.
func (e *Engine) Import(ctx context.Context, dst store.RecordStore, doc *Document, strategy Strategy) (*Result, error) {
	if strategy != Merge && strategy != Replace {
		return nil, fmt.Errorf("unknown import strategy: %q", strategy)
	}

	res := &Result{}

	if strategy == Replace {
		if err := dst.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear destination: %w", err)
		}
	}

	for _, b := range doc.batches() {
		e.importBatch(ctx, dst, b, strategy, res)
	}

	if doc.Settings != nil {
		if err := dst.SaveSettings(ctx, doc.Settings); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("settings: %v", err))
		}
	}

	e.log.Info(ctx, "import finished",
		"strategy", string(strategy), "imported", res.Imported, "skipped", res.Skipped, "errors", len(res.Errors))
	return res, nil
}

func (e *Engine) importBatch(ctx context.Context, dst store.RecordStore, b batch, strategy Strategy, res *Result) {
	type indexed struct {
		idx int
		rec models.Record
	}
	valid := make([]indexed, 0, len(b.records))
	ids := make([]string, 0, len(b.records))

	for i, rec := range b.records {
		if err := rec.Validate(); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("%s[%d]: %v", b.field, i, err))
			continue
		}
		valid = append(valid, indexed{idx: i, rec: rec})
		ids = append(ids, rec.RecordID())
	}

	existing := map[string]struct{}{}
	if strategy == Merge && len(ids) > 0 {
		var err error
		existing, err = dst.ExistingIDs(ctx, b.kind, ids)
		if err != nil {
			// Fall back to relying on the insert-if-absent primitive.
			e.log.Warn(ctx, "id lookup failed, relying on insert dedup", "kind", string(b.kind), "error", err)
			existing = map[string]struct{}{}
		}
	}

	for _, item := range valid {
		if _, ok := existing[item.rec.RecordID()]; ok {
			res.Skipped++
			continue
		}
		err := dst.Add(ctx, item.rec)
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, common.ErrDuplicateID):
			res.Skipped++
		default:
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("%s[%d]: %v", b.field, item.idx, err))
		}
	}
}

// Migrate copies the full record set from src into dst in merge mode and,
// only when every record arrived (or was already present), clears the
// source. Copy-then-clear is the safety property: a failure mid-migration
// leaves the source intact, never the data in neither place.
func (e *Engine) Migrate(ctx context.Context, src, dst store.RecordStore) (*Result, error) {
	doc, err := e.Export(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("migration export failed: %w", err)
	}

	res, err := e.Import(ctx, dst, doc, Merge)
	if err != nil {
		return nil, fmt.Errorf("migration import failed: %w", err)
	}
	if len(res.Errors) > 0 {
		// Some records did not make it across; keep the source.
		return res, fmt.Errorf("migration incomplete: %d records failed, source left intact", len(res.Errors))
	}

	if err := src.Clear(ctx); err != nil {
		return res, fmt.Errorf("failed to clear source after migration: %w", err)
	}

	e.log.Info(ctx, "migration finished", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}
