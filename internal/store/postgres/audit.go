package postgres

import (
	"context"
	"fmt"

	"github.com/RyRy79261/intake-tracker-sub000/internal/dbx"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

func (s *UserStore) AppendAudit(ctx context.Context, entries []models.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		query := rebind(`INSERT INTO audit_log (id, user_id, timestamp, action, details) VALUES (?, ?, ?, ?, ?)`)
		for _, e := range entries {
			if err := e.Validate(); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, e.ID, s.userID, e.Timestamp, string(e.Action), e.Details); err != nil {
				return fmt.Errorf("failed to insert audit entry: %w", err)
			}
		}
		return nil
	})
}

func (s *UserStore) RecentAudit(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	query := rebind(`SELECT id, timestamp, action, details FROM audit_log
		WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`)
	rows, err := s.db.QueryContext(ctx, query, s.userID, limit)
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

func (s *UserStore) PurgeAudit(ctx context.Context, before int64) (int64, error) {
	query := rebind(`DELETE FROM audit_log WHERE user_id = ? AND timestamp < ?`)
	res, err := s.db.ExecContext(ctx, query, s.userID, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit entries: %w", err)
	}
	return res.RowsAffected()
}
