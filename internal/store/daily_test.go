package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(dateLayout, key, time.UTC)
	require.NoError(t, err)
	return d
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestDailyActivity_UpsertAndRange(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertDailyActivity(ctx, DailyActivity{UserID: "u1", Date: day(t, "2024-01-09"), Steps: 5000}))
	require.NoError(t, db.UpsertDailyActivity(ctx, DailyActivity{UserID: "u1", Date: day(t, "2024-01-10"), Steps: 7000, CaloriesOut: intPtr(2100)}))
	require.NoError(t, db.UpsertDailyActivity(ctx, DailyActivity{UserID: "u1", Date: day(t, "2024-01-11"), Steps: 9000}))
	require.NoError(t, db.UpsertDailyActivity(ctx, DailyActivity{UserID: "u2", Date: day(t, "2024-01-10"), Steps: 1}))

	// Re-sync replaces the row
	require.NoError(t, db.UpsertDailyActivity(ctx, DailyActivity{UserID: "u1", Date: day(t, "2024-01-10"), Steps: 7500, ActiveMinutes: 40}))

	rows, err := db.GetDailyActivity(ctx, "u1", DateRange{From: day(t, "2024-01-10"), To: day(t, "2024-01-11")})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, day(t, "2024-01-10"), rows[0].Date)
	assert.Equal(t, 7500, rows[0].Steps)
	assert.Equal(t, 40, rows[0].ActiveMinutes)
	assert.Nil(t, rows[0].CaloriesOut)
	assert.Equal(t, 9000, rows[1].Steps)
}

func TestDailyActivity_EmptyRangeIsNotAnError(t *testing.T) {
	db := NewTestDB(t)

	rows, err := db.GetDailyActivity(context.Background(), "nobody", DateRange{From: day(t, "2024-01-01"), To: day(t, "2024-01-31")})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDailyReads_FetchErrorIsDistinct(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.Close())

	r := DateRange{From: day(t, "2024-01-01"), To: day(t, "2024-01-31")}
	ctx := context.Background()

	_, err := db.GetDailyActivity(ctx, "u1", r)
	assert.ErrorIs(t, err, ErrFetch)
	_, err = db.GetDailySleep(ctx, "u1", r)
	assert.ErrorIs(t, err, ErrFetch)
	_, err = db.GetDailyHeartZones(ctx, "u1", r)
	assert.ErrorIs(t, err, ErrFetch)
	_, err = db.GetDailyRecovery(ctx, "u1", r)
	assert.ErrorIs(t, err, ErrFetch)
	_, err = db.GetActivityLogs(ctx, "u1", r)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestDailySleep_RoundTripsTimestampsAndNulls(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	start := time.Date(2024, 1, 9, 23, 15, 0, 0, time.UTC)
	end := time.Date(2024, 1, 10, 6, 45, 0, 0, time.UTC)
	require.NoError(t, db.UpsertDailySleep(ctx, DailySleep{
		UserID:        "u1",
		Date:          day(t, "2024-01-10"),
		MinutesAsleep: 410,
		TimeInBed:     450,
		Efficiency:    91,
		DeepMinutes:   intPtr(70),
		RemMinutes:    intPtr(95),
		SleepStart:    &start,
		SleepEnd:      &end,
	}))
	require.NoError(t, db.UpsertDailySleep(ctx, DailySleep{UserID: "u1", Date: day(t, "2024-01-11"), MinutesAsleep: 300}))

	rows, err := db.GetDailySleep(ctx, "u1", DateRange{From: day(t, "2024-01-01"), To: day(t, "2024-01-31")})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 410, first.MinutesAsleep)
	require.NotNil(t, first.DeepMinutes)
	assert.Equal(t, 70, *first.DeepMinutes)
	assert.Nil(t, first.LightMinutes)
	require.NotNil(t, first.SleepStart)
	assert.True(t, start.Equal(*first.SleepStart))
	assert.True(t, end.Equal(*first.SleepEnd))

	assert.Nil(t, rows[1].SleepStart)
	assert.Nil(t, rows[1].RemMinutes)
}

func TestDailyHeartZones_NullableRestingHR(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertDailyHeartZones(ctx, DailyHeartZones{UserID: "u1", Date: day(t, "2024-01-10"), Zone2Minutes: 35, RestingHeartRate: intPtr(58)}))
	require.NoError(t, db.UpsertDailyHeartZones(ctx, DailyHeartZones{UserID: "u1", Date: day(t, "2024-01-11"), Zone2Minutes: 0}))

	rows, err := db.GetDailyHeartZones(ctx, "u1", DateRange{From: day(t, "2024-01-10"), To: day(t, "2024-01-11")})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].RestingHeartRate)
	assert.Equal(t, 58, *rows[0].RestingHeartRate)
	assert.Nil(t, rows[1].RestingHeartRate)
}

func TestDailyRecovery_MergesPartialRows(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	d := day(t, "2024-01-10")

	require.NoError(t, db.UpsertDailyRecovery(ctx, DailyRecovery{UserID: "u1", Date: d, HrvRmssd: floatPtr(48.2)}))
	require.NoError(t, db.UpsertDailyRecovery(ctx, DailyRecovery{UserID: "u1", Date: d, Spo2Avg: floatPtr(96.1)}))

	rows, err := db.GetDailyRecovery(ctx, "u1", DateRange{From: d, To: d})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].HrvRmssd)
	require.NotNil(t, rows[0].Spo2Avg)
	assert.InDelta(t, 48.2, *rows[0].HrvRmssd, 1e-9)
	assert.InDelta(t, 96.1, *rows[0].Spo2Avg, 1e-9)
	assert.Nil(t, rows[0].Vo2Max)
}

func TestActivityLogs_ReplaceRange(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	r := DateRange{From: day(t, "2024-01-09"), To: day(t, "2024-01-10")}

	walk := ActivityLog{
		ID:              "fitbit-1",
		Date:            day(t, "2024-01-10"),
		StartTime:       time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC),
		DurationMinutes: 35,
		Name:            "Walk",
		Steps:           intPtr(4200),
	}
	ride := ActivityLog{
		ID:              "fitbit-2",
		Date:            day(t, "2024-01-09"),
		StartTime:       time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Name:            "Bike",
		Distance:        floatPtr(22.5),
	}
	require.NoError(t, db.ReplaceActivityLogs(ctx, "u1", r, []ActivityLog{walk, ride}))

	logs, err := db.GetActivityLogs(ctx, "u1", r)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Bike", logs[0].Name)
	assert.Equal(t, "Walk", logs[1].Name)
	assert.True(t, walk.StartTime.Equal(logs[1].StartTime))

	// The ride was deleted upstream; a generated ID fills the gap for the new log
	swim := ActivityLog{Date: day(t, "2024-01-10"), StartTime: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), Name: "Swim"}
	require.NoError(t, db.ReplaceActivityLogs(ctx, "u1", r, []ActivityLog{walk, swim}))

	logs, err = db.GetActivityLogs(ctx, "u1", r)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Walk", logs[0].Name)
	assert.Equal(t, "Swim", logs[1].Name)
	assert.NotEmpty(t, logs[1].ID)
}
