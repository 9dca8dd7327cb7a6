package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/analysis"
	"healthdash/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedSleepWeek writes minutes asleep for the 7 nights ending fixedNow
func seedSleepWeek(t *testing.T, db *store.DB, userID string, minutes int) {
	t.Helper()
	today := analysis.Today(fixedNow)
	for i := 0; i < 7; i++ {
		require.NoError(t, db.UpsertDailySleep(context.Background(), store.DailySleep{
			UserID:        userID,
			Date:          analysis.AddDays(today, -i),
			MinutesAsleep: minutes,
			TimeInBed:     minutes + 30,
			Efficiency:    90,
		}))
	}
}

func findAlert(events []store.AlertEvent, typ string) *store.AlertEvent {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func countAlerts(events []store.AlertEvent, dayKey, typ string) int {
	n := 0
	for _, e := range events {
		if e.DayKey == dayKey && e.Type == typ {
			n++
		}
	}
	return n
}

func TestEvaluateAlerts_LowSleepMessage(t *testing.T) {
	db := store.NewTestDB(t)
	seedSleepWeek(t, db, "me", 348) // 5.8h

	events, err := NewAlertService(db, "me", discardLogger()).EvaluateAlerts(context.Background(), fixedNow)
	require.NoError(t, err)

	low := findAlert(events, analysis.AlertLowSleep)
	require.NotNil(t, low)
	assert.Equal(t, "Average sleep is 5.8h, below target 6.5h.", low.Message)
	assert.Equal(t, "medium", low.Severity)
	assert.Equal(t, "2024-01-10", low.DayKey)
	assert.Equal(t, "me", low.UserID)
	assert.NotEmpty(t, low.ID)
}

func TestEvaluateAlerts_Idempotent(t *testing.T) {
	db := store.NewTestDB(t)
	ctx := context.Background()
	seedSleepWeek(t, db, "me", 348)
	svc := NewAlertService(db, "me", discardLogger())

	first, err := svc.EvaluateAlerts(ctx, fixedNow)
	require.NoError(t, err)
	second, err := svc.EvaluateAlerts(ctx, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, second, len(first))

	all, err := svc.ListAlerts(ctx, store.MaxAlertLimit)
	require.NoError(t, err)
	assert.Equal(t, 1, countAlerts(all, "2024-01-10", analysis.AlertLowSleep))
	assert.Len(t, all, len(first))

	a, b := findAlert(first, analysis.AlertLowSleep), findAlert(second, analysis.AlertLowSleep)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.ID, b.ID)
	assert.True(t, a.CreatedAt.Equal(b.CreatedAt))
}

func TestEvaluateAlerts_RetriggerReopensResolved(t *testing.T) {
	db := store.NewTestDB(t)
	ctx := context.Background()
	seedSleepWeek(t, db, "me", 348)
	svc := NewAlertService(db, "me", discardLogger())

	events, err := svc.EvaluateAlerts(ctx, fixedNow)
	require.NoError(t, err)
	low := findAlert(events, analysis.AlertLowSleep)
	require.NotNil(t, low)

	require.NoError(t, svc.ResolveAlert(ctx, low.ID, fixedNow))
	all, err := svc.ListAlerts(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, findAlert(all, analysis.AlertLowSleep).ResolvedAt)

	events, err = svc.EvaluateAlerts(ctx, fixedNow)
	require.NoError(t, err)
	assert.Nil(t, findAlert(events, analysis.AlertLowSleep).ResolvedAt)
}

func TestEvaluateAlerts_RecoveredConditionsLeaveRowAlone(t *testing.T) {
	db := store.NewTestDB(t)
	ctx := context.Background()
	seedSleepWeek(t, db, "me", 348)
	svc := NewAlertService(db, "me", discardLogger())

	_, err := svc.EvaluateAlerts(ctx, fixedNow)
	require.NoError(t, err)

	// A good week no longer triggers low_sleep; the stored row is not touched
	seedSleepWeek(t, db, "me", 480)
	events, err := svc.EvaluateAlerts(ctx, fixedNow)
	require.NoError(t, err)
	assert.Nil(t, findAlert(events, analysis.AlertLowSleep))

	all, err := svc.ListAlerts(ctx, 0)
	require.NoError(t, err)
	stored := findAlert(all, analysis.AlertLowSleep)
	require.NotNil(t, stored)
	assert.Equal(t, "Average sleep is 5.8h, below target 6.5h.", stored.Message)
	assert.Nil(t, stored.ResolvedAt)
}

func TestEvaluateAlerts_Disabled(t *testing.T) {
	db := store.NewTestDB(t)
	ctx := context.Background()
	seedSleepWeek(t, db, "me", 200)
	svc := NewAlertService(db, "me", discardLogger())

	prefs, err := svc.Preferences(ctx)
	require.NoError(t, err)
	prefs.AlertsEnabled = false
	require.NoError(t, svc.UpdatePreferences(ctx, *prefs))

	events, err := svc.EvaluateAlerts(ctx, fixedNow)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	all, err := svc.ListAlerts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEvaluateAlerts_CustomThreshold(t *testing.T) {
	db := store.NewTestDB(t)
	ctx := context.Background()
	seedSleepWeek(t, db, "me", 420) // 7.0h
	svc := NewAlertService(db, "me", discardLogger())

	events, err := svc.EvaluateAlerts(ctx, fixedNow)
	require.NoError(t, err)
	assert.Nil(t, findAlert(events, analysis.AlertLowSleep))

	prefs := store.DefaultAlertPreference("ignored")
	prefs.MinSleepHours = 7.5
	require.NoError(t, svc.UpdatePreferences(ctx, prefs))

	events, err = svc.EvaluateAlerts(ctx, fixedNow)
	require.NoError(t, err)
	low := findAlert(events, analysis.AlertLowSleep)
	require.NotNil(t, low)
	assert.Equal(t, "Average sleep is 7.0h, below target 7.5h.", low.Message)
}

func TestEvaluateAlerts_FetchError(t *testing.T) {
	db := store.NewTestDB(t)
	svc := NewAlertService(db, "me", discardLogger())
	require.NoError(t, db.Close())

	_, err := svc.EvaluateAlerts(context.Background(), fixedNow)
	assert.Error(t, err)
}

func TestResolveAlert_NotFound(t *testing.T) {
	svc := NewAlertService(store.NewTestDB(t), "me", discardLogger())

	err := svc.ResolveAlert(context.Background(), "missing", fixedNow)
	assert.ErrorIs(t, err, store.ErrAlertNotFound)
}

func TestDemoEvaluateAlerts_DoesNotPersist(t *testing.T) {
	low := func(time.Time) analysis.DailyRows {
		var rows analysis.DailyRows
		for i := 0; i < 7; i++ {
			rows.Sleep = append(rows.Sleep, store.DailySleep{
				UserID:        analysis.DemoUserID,
				Date:          analysis.AddDays(analysis.Today(fixedNow), -i),
				MinutesAsleep: 348,
			})
		}
		return rows
	}

	events, err := NewDemoService(low).EvaluateAlerts(context.Background(), fixedNow)
	require.NoError(t, err)
	a := findAlert(events, analysis.AlertLowSleep)
	require.NotNil(t, a)
	assert.Equal(t, "Average sleep is 5.8h, below target 6.5h.", a.Message)
	assert.Equal(t, "demo-2024-01-10-low_sleep", a.ID)
}
