package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

func TestCache_MemoizesUntilInvalidated(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	calls := 0

	source := func(ctx context.Context, since int64) ([]models.Record, error) {
		calls++
		return []models.Record{
			intakeAt(now.Add(-time.Hour), models.IntakeWater, 300),
		}, nil
	}

	c := NewCache(source, 0)
	c.now = func() time.Time { return now }

	snap, err := c.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 300.0, snap.Rolling.Water)
	assert.Equal(t, 1, calls)

	// cached: no new load
	_, err = c.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	c.Invalidate()
	_, err = c.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCache_LoadsSupersetForBothWindows(t *testing.T) {
	// 3 AM with a midnight day start: the rolling window reaches further
	// back than the logical day, so the load must start 24h ago.
	now := time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC)

	var gotSince int64
	source := func(ctx context.Context, since int64) ([]models.Record, error) {
		gotSince = since
		return nil, nil
	}

	c := NewCache(source, 0)
	c.now = func() time.Time { return now }

	_, err := c.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.Add(-RollingWindow).UnixMilli(), gotSince)
}

func TestCache_SetDayStartHourInvalidates(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	calls := 0
	source := func(ctx context.Context, since int64) ([]models.Record, error) {
		calls++
		return []models.Record{
			intakeAt(now.Add(-2*time.Hour), models.IntakeSalt, 500),
			intakeAt(now.Add(-13*time.Hour), models.IntakeSalt, 200),
		}, nil
	}

	c := NewCache(source, 0)
	c.now = func() time.Time { return now }

	snap, err := c.Totals(context.Background())
	require.NoError(t, err)
	// midnight anchor: only the 10:00 record is in today
	assert.Equal(t, 500.0, snap.Daily.Salt)

	c.SetDayStartHour(20)
	snap, err = c.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	// 8 PM anchor: the logical day started yesterday evening, both count
	assert.Equal(t, 700.0, snap.Daily.Salt)
}
