package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"healthdash/internal/analysis"
	"healthdash/internal/store"
)

// Insights is the read side shared by live and demo data. Every method takes
// the reference time explicitly; nothing below reads the wall clock.
type Insights interface {
	Overview(ctx context.Context, now time.Time) (*Overview, error)
	Day(ctx context.Context, day time.Time) (*analysis.DayDashboard, error)
	Calendar(ctx context.Context, month, now time.Time) (*analysis.CalendarPayload, error)
	Goals(ctx context.Context, now time.Time) (*analysis.GoalsPayload, error)
	Steps(ctx context.Context, now time.Time) (*analysis.StepInsights, error)
	Sleep(ctx context.Context, now time.Time) (*analysis.SleepInsights, error)
	Conditioning(ctx context.Context, now time.Time) (*analysis.ConditioningInsights, error)
	RHRZone2(ctx context.Context, now time.Time) (*analysis.RHRZone2Insights, error)
	Recovery(ctx context.Context, now time.Time) (*analysis.RecoverySignals, error)
	Trends(ctx context.Context, now time.Time) (*analysis.TrendPayload, error)
	Correlations(ctx context.Context, now time.Time) ([]analysis.CorrelationInsight, error)
}

// QueryService provides the live insights for one user
type QueryService struct {
	insights
	store  *store.DB
	userID string
}

// NewQueryService creates a query service over the user's stored rows
func NewQueryService(db *store.DB, userID string) *QueryService {
	return &QueryService{
		insights: insights{src: &storeSource{db: db, userID: userID}},
		store:    db,
		userID:   userID,
	}
}

// UserID returns the user whose rows are read
func (q *QueryService) UserID() string {
	return q.userID
}

// DemoService provides the same insights over a synthetic calendar, with no store access
type DemoService struct {
	insights
}

// NewDemoService creates a demo service. A nil calendar uses analysis.DemoCalendar.
func NewDemoService(calendar CalendarFunc) *DemoService {
	if calendar == nil {
		calendar = func(now time.Time) analysis.DailyRows {
			return analysis.DemoCalendar(now, analysis.DemoHistoryDays)
		}
	}
	return &DemoService{insights: insights{src: &demoSource{calendar: calendar}}}
}

var (
	_ Insights = (*QueryService)(nil)
	_ Insights = (*DemoService)(nil)
)

// insights computes every payload from a rowSource. The windows live here so
// live and demo payloads are cut identically.
type insights struct {
	src rowSource
}

// rowsAndGoals loads rows and the weekly goals concurrently
func (s insights) rowsAndGoals(ctx context.Context, now time.Time, q rowQuery) (analysis.DailyRows, store.WeeklyGoals, error) {
	var rows analysis.DailyRows
	var goals store.WeeklyGoals

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.src.rows(ctx, now, q)
		return err
	})
	g.Go(func() (err error) {
		goals, err = s.src.goals(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return analysis.DailyRows{}, store.WeeklyGoals{}, err
	}
	return rows, goals, nil
}

// Steps returns pacing, streaks, peak windows and coaching
func (s insights) Steps(ctx context.Context, now time.Time) (*analysis.StepInsights, error) {
	today := analysis.Today(now)
	rows, goals, err := s.rowsAndGoals(ctx, now, rowQuery{
		Activity: analysis.NewWindow(today, analysis.StepHistoryDays),
		Logs:     analysis.NewWindow(today, analysis.StepActivityDays),
	})
	if err != nil {
		return nil, fmt.Errorf("loading step data: %w", err)
	}

	out := analysis.BuildStepInsights(analysis.StepInput{
		Days:        rows.Activity,
		Logs:        rows.Logs,
		DailyTarget: goals.AvgStepsTarget,
	}, now)
	return &out, nil
}

// Sleep returns debt, consistency, stage trends and scores
func (s insights) Sleep(ctx context.Context, now time.Time) (*analysis.SleepInsights, error) {
	rows, goals, err := s.rowsAndGoals(ctx, now, rowQuery{
		Sleep: analysis.NewWindow(analysis.Today(now), analysis.SleepHistoryDays),
	})
	if err != nil {
		return nil, fmt.Errorf("loading sleep data: %w", err)
	}

	out := analysis.BuildSleepInsights(analysis.SleepInput{
		Rows:        rows.Sleep,
		TargetHours: goals.AvgSleepTargetHours,
		Mode:        analysis.ParseScoreMode(goals.SleepScoreMode),
	}, now)
	return &out, nil
}

// Conditioning returns the polarization breakdown and workout adherence
func (s insights) Conditioning(ctx context.Context, now time.Time) (*analysis.ConditioningInsights, error) {
	today := analysis.Today(now)
	window := analysis.NewWindow(today, analysis.ConditioningDays)
	week := analysis.Window{From: analysis.StartOfWeek(today), To: today}

	rows, err := s.src.rows(ctx, now, rowQuery{
		Activity: window,
		Sleep:    window,
		Zones:    window,
		Logs:     week,
	})
	if err != nil {
		return nil, fmt.Errorf("loading conditioning data: %w", err)
	}

	out := analysis.BuildConditioningInsights(analysis.ConditioningInput{
		Days:              analysis.MergeConditioningDays(window, rows.Activity, rows.Sleep, rows.Zones),
		WorkoutDays:       analysis.CountWorkoutDays(rows.Logs, week),
		TargetWorkoutDays: analysis.DefaultTargetWorkoutDays,
	}, now)
	return &out, nil
}

// RHRZone2 returns the resting HR baseline, readiness and zone 2 planner
func (s insights) RHRZone2(ctx context.Context, now time.Time) (*analysis.RHRZone2Insights, error) {
	today := analysis.Today(now)
	rows, err := s.src.rows(ctx, now, rowQuery{
		Zones: analysis.NewWindow(today, analysis.RHRHistoryDays),
		Sleep: analysis.NewWindow(today, 7),
	})
	if err != nil {
		return nil, fmt.Errorf("loading heart data: %w", err)
	}

	out := analysis.BuildRHRZone2Insights(analysis.RHRInput{Zones: rows.Zones, Sleep: rows.Sleep}, now)
	return &out, nil
}

// Recovery returns the latest premium biomarkers and their 7-day deltas
func (s insights) Recovery(ctx context.Context, now time.Time) (*analysis.RecoverySignals, error) {
	rows, err := s.src.rows(ctx, now, rowQuery{
		Recovery: analysis.NewWindow(analysis.Today(now), analysis.RecoveryHistoryDays),
	})
	if err != nil {
		return nil, fmt.Errorf("loading recovery data: %w", err)
	}

	out := analysis.BuildRecoverySignals(rows.Recovery, now)
	return &out, nil
}

// Trends returns 7/30/90-day deltas against their preceding windows
func (s insights) Trends(ctx context.Context, now time.Time) (*analysis.TrendPayload, error) {
	w := analysis.NewWindow(analysis.Today(now), analysis.TrendHistoryDays)
	rows, err := s.src.rows(ctx, now, rowQuery{Activity: w, Sleep: w, Zones: w})
	if err != nil {
		return nil, fmt.Errorf("loading trend data: %w", err)
	}

	out := analysis.BuildTrends(analysis.MergeDayMetrics(rows.Activity, rows.Sleep, rows.Zones), now)
	return &out, nil
}

// Correlations returns the qualifying Pearson insights over the last 90 days
func (s insights) Correlations(ctx context.Context, now time.Time) ([]analysis.CorrelationInsight, error) {
	w := analysis.NewWindow(analysis.Today(now), analysis.CorrelationHistoryDays)
	rows, err := s.src.rows(ctx, now, rowQuery{Activity: w, Sleep: w, Zones: w})
	if err != nil {
		return nil, fmt.Errorf("loading correlation data: %w", err)
	}

	return analysis.BuildCorrelationInsights(analysis.MergeDayMetrics(rows.Activity, rows.Sleep, rows.Zones)), nil
}
