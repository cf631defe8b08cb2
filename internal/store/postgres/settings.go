package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

// Settings returns this user's settings row, falling back to defaults when
// the user has never saved any.
func (s *UserStore) Settings(ctx context.Context) (*models.Settings, error) {
	query := rebind(`SELECT water_limit, salt_limit, water_increment, salt_increment, day_start_hour, data_retention_days, updated_at
		FROM user_settings WHERE user_id = ?`)
	row := s.db.QueryRowContext(ctx, query, s.userID)

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

func (s *UserStore) SaveSettings(ctx context.Context, set *models.Settings) error {
	if err := set.Validate(); err != nil {
		return err
	}
	set.UpdatedAt = time.Now().UnixMilli()
	query := rebind(`INSERT INTO user_settings (user_id, water_limit, salt_limit, water_increment, salt_increment, day_start_hour, data_retention_days, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			water_limit = EXCLUDED.water_limit,
			salt_limit = EXCLUDED.salt_limit,
			water_increment = EXCLUDED.water_increment,
			salt_increment = EXCLUDED.salt_increment,
			day_start_hour = EXCLUDED.day_start_hour,
			data_retention_days = EXCLUDED.data_retention_days,
			updated_at = EXCLUDED.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		s.userID, set.WaterLimit, set.SaltLimit, set.WaterIncrement, set.SaltIncrement,
		set.DayStartHour, set.DataRetentionDays, set.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
