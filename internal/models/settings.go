package models

import (
	"fmt"

	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
)

// Settings is the per-user (remote) or per-device (local) singleton holding
// intake limits and aggregation parameters. The store keeps exactly one row.
type Settings struct {
	WaterLimit        float64 `json:"waterLimit"`
	SaltLimit         float64 `json:"saltLimit"`
	WaterIncrement    float64 `json:"waterIncrement"`
	SaltIncrement     float64 `json:"saltIncrement"`
	DayStartHour      int     `json:"dayStartHour"`
	DataRetentionDays int     `json:"dataRetentionDays"`
	UpdatedAt         int64   `json:"updatedAt,omitempty"`
}

// DefaultSettings returns the settings used before the user has saved any.
func DefaultSettings() *Settings {
	return &Settings{
		WaterLimit:        2000,
		SaltLimit:         6000,
		WaterIncrement:    250,
		SaltIncrement:     500,
		DayStartHour:      0,
		DataRetentionDays: 90,
	}
}

func (s *Settings) Validate() error {
	if s.WaterLimit < 0 || s.SaltLimit < 0 || s.WaterIncrement < 0 || s.SaltIncrement < 0 {
		return fmt.Errorf("%w: negative limit or increment", common.ErrValidation)
	}
	if s.DayStartHour < 0 || s.DayStartHour > 23 {
		return fmt.Errorf("%w: day start hour %d out of range", common.ErrValidation, s.DayStartHour)
	}
	if s.DataRetentionDays < 0 {
		return fmt.Errorf("%w: negative retention", common.ErrValidation)
	}
	return nil
}
