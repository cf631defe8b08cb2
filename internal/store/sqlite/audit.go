package sqlite

import (
	"context"
	"fmt"

	"github.com/RyRy79261/intake-tracker-sub000/internal/dbx"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

// AppendAudit writes a batch of audit entries in one transaction.
func (s *Store) AppendAudit(ctx context.Context, entries []models.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO audit_log (id, timestamp, action, details) VALUES (?, ?, ?, ?)`
		for _, e := range entries {
			if err := e.Validate(); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, e.ID, e.Timestamp, string(e.Action), e.Details); err != nil {
				return fmt.Errorf("failed to insert audit entry: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) RecentAudit(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	query := `SELECT id, timestamp, action, details FROM audit_log ORDER BY timestamp DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit entries: %w", err)
	}
	defer rows.Close()

	var result []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Details); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// PurgeAudit removes entries older than the given cutoff (ms since epoch).
func (s *Store) PurgeAudit(ctx context.Context, before int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_log WHERE timestamp < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit entries: %w", err)
	}
	return res.RowsAffected()
}
