package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

// Settings returns the device settings singleton, falling back to defaults
// when nothing has been saved yet.
func (s *Store) Settings(ctx context.Context) (*models.Settings, error) {
	query := `SELECT water_limit, salt_limit, water_increment, salt_increment, day_start_hour, data_retention_days, updated_at
		FROM settings WHERE id = 1`
	row := s.db.QueryRowContext(ctx, query)

	set := &models.Settings{}
	err := row.Scan(&set.WaterLimit, &set.SaltLimit, &set.WaterIncrement, &set.SaltIncrement,
		&set.DayStartHour, &set.DataRetentionDays, &set.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select settings: %w", err)
	}
	return set, nil
}

// SaveSettings upserts the settings singleton and stamps UpdatedAt.
func (s *Store) SaveSettings(ctx context.Context, set *models.Settings) error {
	if err := set.Validate(); err != nil {
		return err
	}
	set.UpdatedAt = time.Now().UnixMilli()
	query := `INSERT INTO settings (id, water_limit, salt_limit, water_increment, salt_increment, day_start_hour, data_retention_days, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			water_limit = excluded.water_limit,
			salt_limit = excluded.salt_limit,
			water_increment = excluded.water_increment,
			salt_increment = excluded.salt_increment,
			day_start_hour = excluded.day_start_hour,
			data_retention_days = excluded.data_retention_days,
			updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		set.WaterLimit, set.SaltLimit, set.WaterIncrement, set.SaltIncrement,
		set.DayStartHour, set.DataRetentionDays, set.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
