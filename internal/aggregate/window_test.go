package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

func intakeAt(ts time.Time, typ models.IntakeType, amount float64) models.Record {
	return models.IntakeRecord{
		Base:   models.Base{ID: models.NewID(), Timestamp: ts.UnixMilli()},
		Type:   typ,
		Amount: amount,
	}
}

func TestRollingTotals_ExcludesRecordsOlderThan24h(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	records := []models.Record{
		intakeAt(now.Add(-25*time.Hour), models.IntakeWater, 10),
		intakeAt(now.Add(-23*time.Hour), models.IntakeWater, 20),
		intakeAt(now.Add(-1*time.Hour), models.IntakeWater, 30),
	}

	totals := RollingTotals(records, now)
	assert.Equal(t, 50.0, totals.Water)

	// Two hours later with no new records the -23h entry ages out too.
	totals = RollingTotals(records, now.Add(2*time.Hour))
	assert.Equal(t, 30.0, totals.Water)
}

func TestRollingTotals_SeparatesWaterAndSalt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	records := []models.Record{
		intakeAt(now.Add(-time.Hour), models.IntakeWater, 250),
		intakeAt(now.Add(-time.Hour), models.IntakeSalt, 400),
		intakeAt(now.Add(-2*time.Hour), models.IntakeSalt, 600),
		// non-intake records contribute nothing
		models.WeightRecord{Base: models.Base{ID: models.NewID(), Timestamp: now.UnixMilli()}, Weight: 70},
	}

	totals := RollingTotals(records, now)
	assert.Equal(t, 250.0, totals.Water)
	assert.Equal(t, 1000.0, totals.Salt)
}

func TestDayStart_RollsBackBeforeCutoff(t *testing.T) {
	loc := time.FixedZone("local", 3600)

	// 01:45 with a 2 AM day start: the logical day began yesterday 02:00.
	now := time.Date(2024, 6, 15, 1, 45, 0, 0, loc)
	got := DayStart(now, 2)
	assert.Equal(t, time.Date(2024, 6, 14, 2, 0, 0, 0, loc), got)

	// 02:00 exactly is not before the cutoff.
	now = time.Date(2024, 6, 15, 2, 0, 0, 0, loc)
	got = DayStart(now, 2)
	assert.Equal(t, time.Date(2024, 6, 15, 2, 0, 0, 0, loc), got)

	// Midnight anchor behaves like a plain calendar day.
	now = time.Date(2024, 6, 15, 23, 59, 0, 0, loc)
	got = DayStart(now, 0)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, loc), got)
}

func TestDailyTotals_AttributesEarlyMorningToPreviousDay(t *testing.T) {
	loc := time.FixedZone("local", 0)
	now := time.Date(2024, 6, 15, 1, 45, 0, 0, loc)

	records := []models.Record{
		// 01:30 today: before the 02:00 cutoff, belongs to yesterday's total
		intakeAt(time.Date(2024, 6, 15, 1, 30, 0, 0, loc), models.IntakeWater, 100),
		// yesterday 03:00: after yesterday's cutoff, inside the current logical day
		intakeAt(time.Date(2024, 6, 14, 3, 0, 0, 0, loc), models.IntakeWater, 40),
		// yesterday 01:00: before yesterday's cutoff, outside
		intakeAt(time.Date(2024, 6, 14, 1, 0, 0, 0, loc), models.IntakeWater, 7),
	}

	totals := DailyTotals(records, now, 2)
	assert.Equal(t, 140.0, totals.Water)
}
