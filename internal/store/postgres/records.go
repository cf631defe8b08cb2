package postgres

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

// selection mirrors the local backend's per-kind read descriptor, with the
// user_id conjunct always first. The user id is scoped out of the returned
// models entirely.
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
	return rebind(sel.query+" WHERE "+strings.Join(sel.conds, " AND ")+suffix), sel.args
}

func (s *UserStore) selectionFor(kind models.Kind) (*selection, error) {
	var sel *selection
	switch kind {
	case models.KindIntake:
		sel = &selection{
			table: "intake_records",
			query: `SELECT id, timestamp, intake_type, amount, source, note FROM intake_records`,
			scan: func(row scanner) (models.Record, error) {
				var r models.IntakeRecord
				err := row.Scan(&r.ID, &r.Timestamp, &r.Type, &r.Amount, &r.Source, &r.Note)
				return r, err
			},
		}
	case models.KindWeight:
		sel = &selection{
			table: "weight_records",
			query: `SELECT id, timestamp, weight, note FROM weight_records`,
			scan: func(row scanner) (models.Record, error) {
				var r models.WeightRecord
				err := row.Scan(&r.ID, &r.Timestamp, &r.Weight, &r.Note)
				return r, err
			},
		}
	case models.KindBloodPressure:
		sel = &selection{
			table: "blood_pressure_records",
			query: `SELECT id, timestamp, systolic, diastolic, heart_rate, position, arm, note FROM blood_pressure_records`,
			scan: func(row scanner) (models.Record, error) {
				var r models.BloodPressureRecord
				err := row.Scan(&r.ID, &r.Timestamp, &r.Systolic, &r.Diastolic, &r.HeartRate, &r.Position, &r.Arm, &r.Note)
				return r, err
			},
		}
	case models.KindEating:
		sel = &selection{
			table: "event_records",
			query: `SELECT id, timestamp, amount, note FROM event_records`,
			scan: func(row scanner) (models.Record, error) {
				var r models.EatingRecord
				err := row.Scan(&r.ID, &r.Timestamp, &r.Amount, &r.Note)
				return r, err
			},
		}
	case models.KindUrination:
		sel = &selection{
			table: "event_records",
			query: `SELECT id, timestamp, amount, note FROM event_records`,
			scan: func(row scanner) (models.Record, error) {
				var r models.UrinationRecord
				err := row.Scan(&r.ID, &r.Timestamp, &r.Amount, &r.Note)
				return r, err
			},
		}
	default:
		return nil, fmt.Errorf("unknown record kind: %q", kind)
	}

	sel.where("user_id = ?", s.userID)
	if sel.table == "event_records" {
		sel.where("kind = ?", string(kind))
	}
	return sel, nil
}

func (s *UserStore) insertStmt(rec models.Record) (string, []any, error) {
	switch r := rec.(type) {
	case models.IntakeRecord:
		return `INSERT INTO intake_records (id, user_id, timestamp, intake_type, amount, source, note)
			VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			[]any{r.ID, s.userID, r.Timestamp, string(r.Type), r.Amount, r.Source, r.Note}, nil
	case models.WeightRecord:
		return `INSERT INTO weight_records (id, user_id, timestamp, weight, note)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			[]any{r.ID, s.userID, r.Timestamp, r.Weight, r.Note}, nil
	case models.BloodPressureRecord:
		return `INSERT INTO blood_pressure_records (id, user_id, timestamp, systolic, diastolic, heart_rate, position, arm, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			[]any{r.ID, s.userID, r.Timestamp, r.Systolic, r.Diastolic, r.HeartRate, string(r.Position), string(r.Arm), r.Note}, nil
	case models.EatingRecord:
		return `INSERT INTO event_records (id, user_id, timestamp, kind, amount, note)
			VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			[]any{r.ID, s.userID, r.Timestamp, string(models.KindEating), r.Amount, r.Note}, nil
	case models.UrinationRecord:
		return `INSERT INTO event_records (id, user_id, timestamp, kind, amount, note)
			VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			[]any{r.ID, s.userID, r.Timestamp, string(models.KindUrination), r.Amount, r.Note}, nil
	default:
		return "", nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

func (s *UserStore) updateStmt(rec models.Record) (string, []any, error) {
	switch r := rec.(type) {
	case models.IntakeRecord:
		return `UPDATE intake_records SET timestamp = ?, intake_type = ?, amount = ?, source = ?, note = ?
			WHERE id = ? AND user_id = ?`,
			[]any{r.Timestamp, string(r.Type), r.Amount, r.Source, r.Note, r.ID, s.userID}, nil
	case models.WeightRecord:
		return `UPDATE weight_records SET timestamp = ?, weight = ?, note = ? WHERE id = ? AND user_id = ?`,
			[]any{r.Timestamp, r.Weight, r.Note, r.ID, s.userID}, nil
	case models.BloodPressureRecord:
		return `UPDATE blood_pressure_records SET timestamp = ?, systolic = ?, diastolic = ?, heart_rate = ?, position = ?, arm = ?, note = ?
			WHERE id = ? AND user_id = ?`,
			[]any{r.Timestamp, r.Systolic, r.Diastolic, r.HeartRate, string(r.Position), string(r.Arm), r.Note, r.ID, s.userID}, nil
	case models.EatingRecord:
		return `UPDATE event_records SET timestamp = ?, amount = ?, note = ? WHERE id = ? AND user_id = ? AND kind = ?`,
			[]any{r.Timestamp, r.Amount, r.Note, r.ID, s.userID, string(models.KindEating)}, nil
	case models.UrinationRecord:
		return `UPDATE event_records SET timestamp = ?, amount = ?, note = ? WHERE id = ? AND user_id = ? AND kind = ?`,
			[]any{r.Timestamp, r.Amount, r.Note, r.ID, s.userID, string(models.KindUrination)}, nil
	default:
		return "", nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

// Add inserts a new record for this user. ON CONFLICT DO NOTHING makes the
// duplicate check atomic: zero rows affected means the id already existed.
func (s *UserStore) Add(ctx context.Context, rec models.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	query, args, err := s.insertStmt(rec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, rebind(query), args...)
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

func (s *UserStore) Update(ctx context.Context, rec models.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	query, args, err := s.updateStmt(rec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, rebind(query), args...)
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

func (s *UserStore) Delete(ctx context.Context, kind models.Kind, id string) error {
	sel, err := s.selectionFor(kind)
	if err != nil {
		return err
	}
	sel.where("id = ?", id)
	query := rebind(`DELETE FROM ` + sel.table + ` WHERE ` + strings.Join(sel.conds, " AND "))
	res, err := s.db.ExecContext(ctx, query, sel.args...)
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

func (s *UserStore) ListSince(ctx context.Context, kind models.Kind, since int64) ([]models.Record, error) {
	sel, err := s.selectionFor(kind)
	if err != nil {
		return nil, err
	}
	sel.where("timestamp >= ?", since)
	query, args := sel.build(" ORDER BY timestamp DESC, id DESC")
	return s.queryRecords(ctx, sel, query, args)
}

func (s *UserStore) ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	sel, err := s.selectionFor(kind)
	if err != nil {
		return nil, err
	}
	query, args := sel.build(" ORDER BY timestamp DESC, id DESC")
	return s.queryRecords(ctx, sel, query, args)
}

func (s *UserStore) ListPage(ctx context.Context, kind models.Kind, before *store.Cursor, limit int) (*store.Page, error) {
	if limit <= 0 {
		return &store.Page{}, nil
	}
	sel, err := s.selectionFor(kind)
	if err != nil {
		return nil, err
	}
	if before != nil {
		sel.where("(timestamp < ? OR (timestamp = ? AND id < ?))", before.Timestamp, before.Timestamp, before.ID)
	}
	sel.args = append(sel.args, limit+1)
	query, args := sel.build(" ORDER BY timestamp DESC, id DESC LIMIT ?")

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

func (s *UserStore) ExistingIDs(ctx context.Context, kind models.Kind, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	sel, err := s.selectionFor(kind)
	if err != nil {
		return nil, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	sel.where("id IN (" + placeholders + ")")
	for _, id := range ids {
		sel.args = append(sel.args, id)
	}
	query := rebind(`SELECT id FROM ` + sel.table + ` WHERE ` + strings.Join(sel.conds, " AND "))

	rows, err := s.db.QueryContext(ctx, query, sel.args...)
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

func (s *UserStore) Clear(ctx context.Context, kinds ...models.Kind) error {
	if len(kinds) == 0 {
		kinds = models.Kinds()
	}
	for _, kind := range kinds {
		sel, err := s.selectionFor(kind)
		if err != nil {
			return err
		}
		query := rebind(`DELETE FROM ` + sel.table + ` WHERE ` + strings.Join(sel.conds, " AND "))
		if _, err := s.db.ExecContext(ctx, query, sel.args...); err != nil {
			return fmt.Errorf("failed to clear %s: %w", kind, err)
		}
	}
	return nil
}

func (s *UserStore) queryRecords(ctx context.Context, sel *selection, query string, args []any) ([]models.Record, error) {
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
