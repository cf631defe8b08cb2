package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
	"github.com/RyRy79261/intake-tracker-sub000/internal/store"
)

type scanner interface {
	Scan(dest ...any) error
}

// selection describes how to read one record kind back out of its table.
// Eating and urination markers share the event_records table, so their
// selections start with a kind conjunct.
type selection struct {
	table string
	query string
	conds []string
	args  []any
	scan  func(scanner) (models.Record, error)
}

func (sel *selection) where(cond string, args ...any) {
	sel.conds = append(sel.conds, cond)
	sel.args = append(sel.args, args...)
}

func (sel *selection) build(suffix string) (string, []any) {
	q := sel.query
	if len(sel.conds) > 0 {
		q += " WHERE " + strings.Join(sel.conds, " AND ")
	}
	return q + suffix, sel.args
}

func selectionFor(kind models.Kind) (*selection, error) {
	switch kind {
	case models.KindIntake:
		return &selection{
			table: "intake_records",
			query: `SELECT id, timestamp, intake_type, amount, source, note FROM intake_records`,
			scan: func(row scanner) (models.Record, error) {
				var r models.IntakeRecord
				err := row.Scan(&r.ID, &r.Timestamp, &r.Type, &r.Amount, &r.Source, &r.Note)
				return r, err
			},
		}, nil
	case models.KindWeight:
		return &selection{
			table: "weight_records",
			query: `SELECT id, timestamp, weight, note FROM weight_records`,
			scan: func(row scanner) (models.Record, error) {
				var r models.WeightRecord
				err := row.Scan(&r.ID, &r.Timestamp, &r.Weight, &r.Note)
				return r, err
			},
		}, nil
	case models.KindBloodPressure:
		return &selection{
			table: "blood_pressure_records",
			query: `SELECT id, timestamp, systolic, diastolic, heart_rate, position, arm, note FROM blood_pressure_records`,
			scan: func(row scanner) (models.Record, error) {
				var r models.BloodPressureRecord
				err := row.Scan(&r.ID, &r.Timestamp, &r.Systolic, &r.Diastolic, &r.HeartRate, &r.Position, &r.Arm, &r.Note)
				return r, err
			},
		}, nil
	case models.KindEating:
		sel := eventSelection(models.KindEating)
		sel.scan = func(row scanner) (models.Record, error) {
			var r models.EatingRecord
			err := row.Scan(&r.ID, &r.Timestamp, &r.Amount, &r.Note)
			return r, err
		}
		return sel, nil
	case models.KindUrination:
		sel := eventSelection(models.KindUrination)
		sel.scan = func(row scanner) (models.Record, error) {
			var r models.UrinationRecord
			err := row.Scan(&r.ID, &r.Timestamp, &r.Amount, &r.Note)
			return r, err
		}
		return sel, nil
	default:
		return nil, fmt.Errorf("unknown record kind: %q", kind)
	}
}

func eventSelection(kind models.Kind) *selection {
	return &selection{
		table: "event_records",
		query: `SELECT id, timestamp, amount, note FROM event_records`,
		conds: []string{"kind = ?"},
		args:  []any{string(kind)},
	}
}

// insertStmt returns an insert-if-absent statement for the record. The
// OR IGNORE form makes duplicate detection atomic: zero rows affected means
// the id already existed.
func insertStmt(rec models.Record) (string, []any, error) {
	switch r := rec.(type) {
	case models.IntakeRecord:
		return `INSERT OR IGNORE INTO intake_records (id, timestamp, intake_type, amount, source, note) VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{r.ID, r.Timestamp, string(r.Type), r.Amount, r.Source, r.Note}, nil
	case models.WeightRecord:
		return `INSERT OR IGNORE INTO weight_records (id, timestamp, weight, note) VALUES (?, ?, ?, ?)`,
			[]any{r.ID, r.Timestamp, r.Weight, r.Note}, nil
	case models.BloodPressureRecord:
		return `INSERT OR IGNORE INTO blood_pressure_records (id, timestamp, systolic, diastolic, heart_rate, position, arm, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{r.ID, r.Timestamp, r.Systolic, r.Diastolic, r.HeartRate, string(r.Position), string(r.Arm), r.Note}, nil
	case models.EatingRecord:
		return `INSERT OR IGNORE INTO event_records (id, timestamp, kind, amount, note) VALUES (?, ?, ?, ?, ?)`,
			[]any{r.ID, r.Timestamp, string(models.KindEating), r.Amount, r.Note}, nil
	case models.UrinationRecord:
		return `INSERT OR IGNORE INTO event_records (id, timestamp, kind, amount, note) VALUES (?, ?, ?, ?, ?)`,
			[]any{r.ID, r.Timestamp, string(models.KindUrination), r.Amount, r.Note}, nil
	default:
		return "", nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

func updateStmt(rec models.Record) (string, []any, error) {
	switch r := rec.(type) {
	case models.IntakeRecord:
		return `UPDATE intake_records SET timestamp = ?, intake_type = ?, amount = ?, source = ?, note = ? WHERE id = ?`,
			[]any{r.Timestamp, string(r.Type), r.Amount, r.Source, r.Note, r.ID}, nil
	case models.WeightRecord:
		return `UPDATE weight_records SET timestamp = ?, weight = ?, note = ? WHERE id = ?`,
			[]any{r.Timestamp, r.Weight, r.Note, r.ID}, nil
	case models.BloodPressureRecord:
		return `UPDATE blood_pressure_records SET timestamp = ?, systolic = ?, diastolic = ?, heart_rate = ?, position = ?, arm = ?, note = ? WHERE id = ?`,
			[]any{r.Timestamp, r.Systolic, r.Diastolic, r.HeartRate, string(r.Position), string(r.Arm), r.Note, r.ID}, nil
	case models.EatingRecord:
		return `UPDATE event_records SET timestamp = ?, amount = ?, note = ? WHERE id = ? AND kind = ?`,
			[]any{r.Timestamp, r.Amount, r.Note, r.ID, string(models.KindEating)}, nil
	case models.UrinationRecord:
		return `UPDATE event_records SET timestamp = ?, amount = ?, note = ? WHERE id = ? AND kind = ?`,
			[]any{r.Timestamp, r.Amount, r.Note, r.ID, string(models.KindUrination)}, nil
	default:
		return "", nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

// Add inserts a new record. It validates before persisting and fails with
// common.ErrDuplicateID if the id is already taken.
func (s *Store) Add(ctx context.Context, rec models.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	query, args, err := insertStmt(rec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrDuplicateID
	}
	return nil
}

// Update rewrites an existing record in place. Moving a record's timestamp
// across an aggregation window boundary is allowed; aggregation always
// recomputes from the stored set.
func (s *Store) Update(ctx context.Context, rec models.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	query, args, err := updateStmt(rec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, kind models.Kind, id string) error {
	sel, err := selectionFor(kind)
	if err != nil {
		return err
	}
	sel.where("id = ?", id)
	conds := strings.Join(sel.conds, " AND ")
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+sel.table+` WHERE `+conds, sel.args...)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *Store) ListSince(ctx context.Context, kind models.Kind, since int64) ([]models.Record, error) {
	sel, err := selectionFor(kind)
	if err != nil {
		return nil, err
	}
	sel.where("timestamp >= ?", since)
	query, args := sel.build(" ORDER BY timestamp DESC, id DESC")
	return s.queryRecords(ctx, sel, query, args)
}

func (s *Store) ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	sel, err := selectionFor(kind)
	if err != nil {
		return nil, err
	}
	query, args := sel.build(" ORDER BY timestamp DESC, id DESC")
	return s.queryRecords(ctx, sel, query, args)
}

// ListPage fetches limit+1 rows; the probe row, if present, only signals
// that another page exists and is discarded.
func (s *Store) ListPage(ctx context.Context, kind models.Kind, before *store.Cursor, limit int) (*store.Page, error) {
	if limit <= 0 {
		return &store.Page{}, nil
	}
	sel, err := selectionFor(kind)
	if err != nil {
		return nil, err
	}
	if before != nil {
		sel.where("(timestamp < ? OR (timestamp = ? AND id < ?))", before.Timestamp, before.Timestamp, before.ID)
	}
	query, args := sel.build(" ORDER BY timestamp DESC, id DESC LIMIT ?")
	args = append(args, limit+1)

	recs, err := s.queryRecords(ctx, sel, query, args)
	if err != nil {
		return nil, err
	}

	page := &store.Page{Records: recs}
	if len(recs) > limit {
		page.Records = recs[:limit]
		last := page.Records[limit-1]
		page.NextCursor = &store.Cursor{Timestamp: last.RecordTimestamp(), ID: last.RecordID()}
	}
	return page, nil
}

func (s *Store) ExistingIDs(ctx context.Context, kind models.Kind, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	sel, err := selectionFor(kind)
	if err != nil {
		return nil, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	sel.where("id IN ("+placeholders+")")
	for _, id := range ids {
		sel.args = append(sel.args, id)
	}
	conds := strings.Join(sel.conds, " AND ")

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM `+sel.table+` WHERE `+conds, sel.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Store) Clear(ctx context.Context, kinds ...models.Kind) error {
	if len(kinds) == 0 {
		kinds = models.Kinds()
	}
	for _, kind := range kinds {
		sel, err := selectionFor(kind)
		if err != nil {
			return err
		}
		query := `DELETE FROM ` + sel.table
		if len(sel.conds) > 0 {
			query += ` WHERE ` + strings.Join(sel.conds, " AND ")
		}
		if _, err := s.db.ExecContext(ctx, query, sel.args...); err != nil {
			return fmt.Errorf("failed to clear %s: %w", kind, err)
		}
	}
	return nil
}

func (s *Store) queryRecords(ctx context.Context, sel *selection, query string, args []any) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		rec, err := sel.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
