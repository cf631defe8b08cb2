// Package aggregate computes time-windowed intake totals. The window
// functions are pure: they depend only on the records, the reference time,
// and the window parameters, never on which backend supplied the records.
package aggregate

import (
	"time"

	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

// RollingWindow is the fixed span of the rolling total.
const RollingWindow = 24 * time.Hour

// Totals holds per-type intake sums for one window.
type Totals struct {
	Water float64
	Salt  float64
}

// RollingTotals sums intake amounts with timestamp >= now-24h.
func RollingTotals(records []models.Record, now time.Time) Totals {
	return sumSince(records, now.Add(-RollingWindow).UnixMilli())
}

// DayStart returns the start of the current logical day: today's
// dayStartHour in now's location, rolled back one calendar day when now is
// earlier than the cutoff. A user whose day starts at 2 AM treats 1 AM as
// still belonging to the previous day.
func DayStart(now time.Time, dayStartHour int) time.Time {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), dayStartHour, 0, 0, 0, now.Location())
	if now.Before(cutoff) {
		cutoff = cutoff.AddDate(0, 0, -1)
	}
	return cutoff
}

// DailyTotals sums intake amounts recorded since the start of the current
// logical day.
func DailyTotals(records []models.Record, now time.Time, dayStartHour int) Totals {
	return sumSince(records, DayStart(now, dayStartHour).UnixMilli())
}

// sumSince recomputes from the full filtered set on every call. There is no
// incremental path: an update can move a record across either window
// boundary, and a full rescan stays correct under mutation.
func sumSince(records []models.Record, since int64) Totals {
	var t Totals
	for _, rec := range records {
		intake, ok := rec.(models.IntakeRecord)
		if !ok {
			continue
		}
		if intake.Timestamp < since {
			continue
		}
		switch intake.Type {
		case models.IntakeWater:
			t.Water += intake.Amount
		case models.IntakeSalt:
			t.Salt += intake.Amount
		}
	}
	return t
}
