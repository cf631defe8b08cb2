package ledger

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyRy79261/intake-tracker-sub000/internal/backup"
	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
	"github.com/RyRy79261/intake-tracker-sub000/internal/config"
	"github.com/RyRy79261/intake-tracker-sub000/internal/logging"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
	"github.com/RyRy79261/intake-tracker-sub000/internal/router"
)

var localCfg = router.Config{Mode: router.ModeLocal}

func setupService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{
		SQLitePath:       ":memory:",
		AuditFlushDelay:  10 * time.Millisecond,
		AggregateRefresh: time.Minute,
		RetentionDays:    90,
	}
	svc, err := New(context.Background(), cfg, logging.NewSlogLogger(slog.Default()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return svc
}

func intakeRecord(typ models.IntakeType, amount float64, ts int64) models.IntakeRecord {
	return models.IntakeRecord{Base: models.NewBase(ts), Type: typ, Amount: amount}
}

func TestService_AddThenTotals(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	require.NoError(t, svc.AddRecord(ctx, localCfg, intakeRecord(models.IntakeWater, 500, now)))
	require.NoError(t, svc.AddRecord(ctx, localCfg, intakeRecord(models.IntakeSalt, 300, now)))

	snap, err := svc.Totals(ctx, localCfg)
	require.NoError(t, err)
	assert.Equal(t, 500.0, snap.Rolling.Water)
	assert.Equal(t, 300.0, snap.Rolling.Salt)
}

func TestService_UpdateMovesTotals(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	rec := intakeRecord(models.IntakeWater, 500, now)
	require.NoError(t, svc.AddRecord(ctx, localCfg, rec))

	snap, err := svc.Totals(ctx, localCfg)
	require.NoError(t, err)
	require.Equal(t, 500.0, snap.Rolling.Water)

	// push the record out of the rolling window
	rec.Timestamp = now - (25 * time.Hour).Milliseconds()
	require.NoError(t, svc.UpdateRecord(ctx, localCfg, rec))

	snap, err = svc.Totals(ctx, localCfg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.Rolling.Water)
}

func TestService_DeleteRemovesFromTotals(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	rec := intakeRecord(models.IntakeWater, 250, now)
	require.NoError(t, svc.AddRecord(ctx, localCfg, rec))
	require.NoError(t, svc.DeleteRecord(ctx, localCfg, models.KindIntake, rec.ID))

	snap, err := svc.Totals(ctx, localCfg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.Rolling.Water)
}

func TestService_HistoryPagination(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	base := time.Now().UnixMilli()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.AddRecord(ctx, localCfg, intakeRecord(models.IntakeWater, 100, base+int64(i))))
	}

	seen := 0
	pages := 0
	page, err := svc.History(ctx, localCfg, models.KindIntake, nil, 2)
	require.NoError(t, err)
	for {
		pages++
		seen += len(page.Records)
		if page.NextCursor == nil {
			break
		}
		page, err = svc.History(ctx, localCfg, models.KindIntake, page.NextCursor, 2)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, seen)
	assert.Equal(t, 3, pages)
}

func TestService_ServerModeWithoutCredential(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	err := svc.AddRecord(ctx, router.Config{Mode: router.ModeServer}, intakeRecord(models.IntakeWater, 100, 0))
	assert.ErrorIs(t, err, common.ErrAuthRequired)

	_, err = svc.Totals(ctx, router.Config{Mode: router.ModeServer})
	assert.ErrorIs(t, err, common.ErrAuthRequired)
}

func TestService_SettingsChangeDayStart(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	set, err := svc.Settings(ctx, localCfg)
	require.NoError(t, err)
	require.Equal(t, 0, set.DayStartHour)

	set.DayStartHour = 4
	require.NoError(t, svc.SaveSettings(ctx, localCfg, set))

	got, err := svc.Settings(ctx, localCfg)
	require.NoError(t, err)
	assert.Equal(t, 4, got.DayStartHour)
}

func TestService_ExportImportRoundTrip(t *testing.T) {
	src := setupService(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	require.NoError(t, src.AddRecord(ctx, localCfg, intakeRecord(models.IntakeWater, 500, now)))
	require.NoError(t, src.AddRecord(ctx, localCfg, models.WeightRecord{Base: models.NewBase(now), Weight: 71.5}))

	doc, err := src.ExportBackup(ctx, localCfg)
	require.NoError(t, err)
	require.Equal(t, 2, doc.TotalRecords())

	data, err := doc.Encode()
	require.NoError(t, err)

	dst := setupService(t)
	res, err := dst.ImportBackup(ctx, localCfg, data, backup.Merge)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Empty(t, res.Errors)

	snap, err := dst.Totals(ctx, localCfg)
	require.NoError(t, err)
	assert.Equal(t, 500.0, snap.Rolling.Water)
}

func TestService_ImportRejectsMalformedDocument(t *testing.T) {
	svc := setupService(t)

	_, err := svc.ImportBackup(context.Background(), localCfg, []byte("not json"), backup.Merge)
	assert.ErrorIs(t, err, common.ErrMalformedDocument)
}

func TestService_AuditTrailRecordsOperations(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddRecord(ctx, localCfg, intakeRecord(models.IntakeWater, 500, 0)))

	require.Eventually(t, func() bool {
		entries := svc.RecentAudit(ctx, localCfg, 10, time.Second)
		for _, e := range entries {
			if e.Action == models.AuditRecordAdd {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond, "audit entry should appear after the coalescing window")
}

func TestService_PurgeAuditNothingOld(t *testing.T) {
	svc := setupService(t)

	n, err := svc.PurgeAudit(context.Background(), localCfg)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
