package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/analysis"
	"healthdash/internal/service"
)

// isolate points HOME and the working directory at a temp dir so no real
// config, .env or database is read
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("HEALTHDASH_FITBIT_CLIENT_ID", "")
	t.Setenv("HEALTHDASH_FITBIT_CLIENT_SECRET", "")
	t.Setenv("HEALTHDASH_DEMO_MODE", "false")
	t.Chdir(dir)
	color.NoColor = true
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func liveArgs(dir string, args ...string) []string {
	return append([]string{"--db", filepath.Join(dir, "test.db"), "--date", "2024-01-10"}, args...)
}

func TestInsights_Demo(t *testing.T) {
	isolate(t)

	for _, kind := range service.InsightKinds {
		t.Run(kind, func(t *testing.T) {
			out, err := run(t, "--demo", "--date", "2024-01-10", "insights", kind)
			require.NoError(t, err)

			var payload map[string]any
			assert.NoError(t, json.Unmarshal([]byte(out), &payload))
		})
	}
}

func TestInsights_UnknownKind(t *testing.T) {
	isolate(t)

	_, err := run(t, "--demo", "insights", "weather")
	assert.ErrorIs(t, err, service.ErrUnknownKind)
}

func TestInsights_StepsPayload(t *testing.T) {
	isolate(t)

	out, err := run(t, "--demo", "--date", "2024-01-10", "insights", "steps")
	require.NoError(t, err)

	var steps struct {
		DailyTarget int `json:"dailyTarget"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &steps))
	assert.Positive(t, steps.DailyTarget)
}

func TestOverview_Demo(t *testing.T) {
	isolate(t)

	out, err := run(t, "--demo", "--date", "2024-01-10", "overview")
	require.NoError(t, err)
	assert.Contains(t, out, "Overview for 2024-01-10")
	assert.Contains(t, out, "Readiness")
	assert.Contains(t, out, "Weekly goals")

	out, err = run(t, "--demo", "--date", "2024-01-10", "overview", "--json")
	require.NoError(t, err)
	var ov service.Overview
	require.NoError(t, json.Unmarshal([]byte(out), &ov))
	assert.Equal(t, "2024-01-10", ov.Date)
}

func TestDay_Demo(t *testing.T) {
	isolate(t)

	out, err := run(t, "--demo", "--date", "2024-01-10", "day", "2024-01-08")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-08")

	_, err = run(t, "--demo", "day", "yesterday")
	assert.ErrorContains(t, err, "want YYYY-MM-DD")
}

func TestCalendar_Demo(t *testing.T) {
	isolate(t)

	out, err := run(t, "--demo", "--date", "2024-01-10", "calendar", "2023-12")
	require.NoError(t, err)
	assert.Contains(t, out, "Calendar 2023-12")
	assert.Contains(t, out, "This week")

	_, err = run(t, "--demo", "calendar", "Dec")
	assert.ErrorContains(t, err, "want YYYY-MM")
}

func TestBadDateFlag(t *testing.T) {
	isolate(t)

	_, err := run(t, "--demo", "--date", "10/01/2024", "overview")
	assert.ErrorContains(t, err, "invalid --date")
}

func TestAlertsEvaluate_Demo(t *testing.T) {
	isolate(t)

	_, err := run(t, "--demo", "--date", "2024-01-10", "alerts", "evaluate")
	assert.NoError(t, err)

	_, err = run(t, "--demo", "alerts", "list")
	assert.ErrorIs(t, err, errDemoMode)
}

func TestAlertsPrefs_Live(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, liveArgs(dir, "alerts", "prefs")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Alert preferences")
	assert.NotContains(t, out, "updated")

	out, err = run(t, liveArgs(dir, "alerts", "prefs", "--min-avg-steps", "12000")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Alert preferences updated.")
	assert.Contains(t, out, "12,000")

	// Persisted across invocations
	out, err = run(t, liveArgs(dir, "alerts", "prefs")...)
	require.NoError(t, err)
	assert.Contains(t, out, "12,000")

	_, err = run(t, liveArgs(dir, "alerts", "prefs", "--min-zone2-days", "9")...)
	assert.ErrorIs(t, err, service.ErrInvalidSettings)
}

func TestAlertsListAndResolve_Live(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, liveArgs(dir, "alerts", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No alerts.")

	_, err = run(t, liveArgs(dir, "alerts", "resolve", "missing")...)
	assert.Error(t, err)
}

func TestGoalsSet_Live(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, liveArgs(dir, "goals", "set", "--steps", "9000", "--sleep-score-mode", "recovery")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly goals updated.")
	assert.Contains(t, out, "9,000")
	assert.Contains(t, out, "recovery")

	out, err = run(t, liveArgs(dir, "goals")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Sleep score mode: recovery")

	_, err = run(t, liveArgs(dir, "goals", "set", "--sleep-score-mode", "vibes")...)
	assert.ErrorIs(t, err, service.ErrInvalidSettings)

	_, err = run(t, "--demo", "goals", "set", "--steps", "9000")
	assert.ErrorIs(t, err, errDemoMode)
}

func TestSync_RequiresCredentials(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, liveArgs(dir, "sync")...)
	assert.ErrorContains(t, err, "client_id")
}

func TestSync_RequiresLogin(t *testing.T) {
	dir := isolate(t)
	t.Setenv("HEALTHDASH_FITBIT_CLIENT_ID", "client")
	t.Setenv("HEALTHDASH_FITBIT_CLIENT_SECRET", "secret")

	_, err := run(t, liveArgs(dir, "sync", "--days", "3")...)
	assert.ErrorContains(t, err, "healthdash login")
}

func TestSyncStatus_Live(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, liveArgs(dir, "sync", "status")...)
	require.NoError(t, err)
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "No sync runs yet")
}

func TestLogout_NotConnected(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, liveArgs(dir, "logout")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Not connected.")
}

func TestDaemon_RejectsBadSchedule(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, liveArgs(dir, "daemon", "--schedule", "whenever")...)
	assert.ErrorContains(t, err, "parsing schedule")
}

func TestParseRange(t *testing.T) {
	now, err := analysis.ParseDayKey("2024-01-10")
	require.NoError(t, err)

	tests := []struct {
		name     string
		from, to string
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{"defaults to today", "", "", "2024-01-10", "2024-01-10", false},
		{"from only", "2024-01-01", "", "2024-01-01", "2024-01-10", false},
		{"both", "2024-01-01", "2024-01-05", "2024-01-01", "2024-01-05", false},
		{"bad from", "Jan 1", "", "", "", true},
		{"bad to", "", "2024-1-5", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := parseRange(tt.from, tt.to, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from.Format("2006-01-02"))
			assert.Equal(t, tt.wantTo, to.Format("2006-01-02"))
		})
	}
}
