package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keysOf marshals v and returns its object keys
func keysOf(t *testing.T, v any) []string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	return keys
}

func field(t *testing.T, v any, name string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))
	require.Contains(t, obj, name)
	return obj[name]
}

func TestLoadInsight_PayloadShapes(t *testing.T) {
	want := map[string][]string{
		KindSteps: {"dailyTarget", "todaySteps", "weeklyPacing", "streaks", "peakWindows",
			"distribution", "coaching", "progressionPlan"},
		KindSleep: {"targetSleepHours", "sleepScore", "sleepDebtHours", "poorNightsLast14",
			"consistency", "stageTrend", "smartFlags"},
		KindConditioning: {"weekly", "adherence", "polarizedPlan", "coachNotes"},
		KindRHRZone2:     {"baseline", "readiness", "planner"},
		KindRecovery: {"hasAnyData", "dateLabel", "cardioFitness", "vo2Max", "hrvRmssd",
			"breathingRate", "spo2Avg", "skinTempC", "coreTempC", "notes"},
		KindTrends:       {"windows"},
		KindCorrelations: {"insights"},
		KindGoals:        {"goals", "progress", "nudges"},
	}
	require.Len(t, want, len(InsightKinds))

	demo := NewDemoService(nil)
	for _, kind := range InsightKinds {
		t.Run(kind, func(t *testing.T) {
			payload, err := LoadInsight(context.Background(), demo, kind, fixedNow)
			require.NoError(t, err)
			assert.ElementsMatch(t, want[kind], keysOf(t, payload))
		})
	}
}

func TestLoadInsight_NestedStepAndSleepShapes(t *testing.T) {
	demo := NewDemoService(nil)
	ctx := context.Background()

	steps, err := LoadInsight(ctx, demo, KindSteps, fixedNow)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"targetTotal", "currentTotal", "expectedByToday", "daysElapsed", "status", "gap"},
		keysOf(t, field(t, steps, "weeklyPacing")))
	assert.ElementsMatch(t, []string{"todayTarget", "message"}, keysOf(t, field(t, steps, "coaching")))

	var plan []map[string]any
	require.NoError(t, json.Unmarshal(field(t, steps, "progressionPlan"), &plan))
	// Wednesday leaves Thursday through Saturday
	require.Len(t, plan, 3)
	assert.Equal(t, "Thu", plan[0]["day"])
	assert.Contains(t, plan[0], "target")

	sleep, err := LoadInsight(ctx, demo, KindSleep, fixedNow)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"bedtimeStdMinutes", "wakeStdMinutes", "score", "avgBedtime", "avgWakeTime"},
		keysOf(t, field(t, sleep, "consistency")))
	assert.ElementsMatch(t,
		[]string{"deepDelta", "remDelta", "lightDelta", "wakeDelta"},
		keysOf(t, field(t, sleep, "stageTrend")))

	var flags []string
	require.NoError(t, json.Unmarshal(field(t, sleep, "smartFlags"), &flags))
	assert.NotEmpty(t, flags)
}
