package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
)

// DefaultRefreshInterval is how often cached totals are invalidated.
const DefaultRefreshInterval = 60 * time.Second

// Source loads the intake records feeding the cached totals. The router's
// resolved backend satisfies this through a small closure at the call site.
type Source func(ctx context.Context, since int64) ([]models.Record, error)

// Snapshot is one computed set of totals.
type Snapshot struct {
	Rolling    Totals
	Daily      Totals
	ComputedAt time.Time
}

// Cache memoizes window totals and drops them on a fixed period. The clock
// is sampled once per recompute, not polled inside the sums.
type Cache struct {
	mu           sync.Mutex
	source       Source
	dayStartHour int
	now          func() time.Time

	snapshot *Snapshot
}

func NewCache(source Source, dayStartHour int) *Cache {
	return &Cache{source: source, dayStartHour: dayStartHour, now: time.Now}
}

// Totals returns the cached snapshot, recomputing it first when invalidated.
func (c *Cache) Totals(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil {
		return c.snapshot, nil
	}

	now := c.now()
	// Load a superset wide enough for both windows; the window functions do
	// the precise filtering.
	since := now.Add(-RollingWindow).UnixMilli()
	if dayStart := DayStart(now, c.dayStartHour).UnixMilli(); dayStart < since {
		since = dayStart
	}
	records, err := c.source(ctx, since)
	if err != nil {
		return nil, err
	}

	c.snapshot = &Snapshot{
		Rolling:    RollingTotals(records, now),
		Daily:      DailyTotals(records, now, c.dayStartHour),
		ComputedAt: now,
	}
	return c.snapshot, nil
}

// Invalidate drops the cached snapshot so the next read recomputes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

// SetDayStartHour updates the logical-day anchor and invalidates.
func (c *Cache) SetDayStartHour(hour int) {
	c.mu.Lock()
	c.dayStartHour = hour
	c.snapshot = nil
	c.mu.Unlock()
}

// Run invalidates the cache on the given interval until ctx is done. It is
// safe to run alongside in-flight reads and mutations.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Invalidate()
		}
	}
}
