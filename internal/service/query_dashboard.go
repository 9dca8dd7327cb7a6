package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"healthdash/internal/analysis"
)

// Overview contains everything the dashboard's landing screen shows
type Overview struct {
	Date      string                     `json:"date"`
	Today     analysis.DayDashboard      `json:"today"`
	Goals     analysis.GoalsPayload      `json:"goals"`
	Readiness analysis.RHRZone2Insights  `json:"readiness"`
	Recovery  analysis.RecoverySignals   `json:"recovery"`
	Sleep     analysis.SleepScoreSummary `json:"sleep"`
}

// Overview builds the landing payload. Each part loads independently and any
// failed load fails the whole overview.
func (s insights) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	out := &Overview{Date: analysis.DayKey(analysis.Today(now))}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		day, err := s.Day(ctx, now)
		if err != nil {
			return err
		}
		out.Today = *day
		return nil
	})
	g.Go(func() error {
		goals, err := s.Goals(ctx, now)
		if err != nil {
			return err
		}
		out.Goals = *goals
		return nil
	})
	g.Go(func() error {
		rhr, err := s.RHRZone2(ctx, now)
		if err != nil {
			return err
		}
		out.Readiness = *rhr
		return nil
	})
	g.Go(func() error {
		rec, err := s.Recovery(ctx, now)
		if err != nil {
			return err
		}
		out.Recovery = *rec
		return nil
	})
	g.Go(func() error {
		sleep, err := s.Sleep(ctx, now)
		if err != nil {
			return err
		}
		out.Sleep = sleep.SleepScore
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Day returns the dashboard for a single calendar day
func (s insights) Day(ctx context.Context, day time.Time) (*analysis.DayDashboard, error) {
	d := analysis.Today(day)
	w := analysis.Window{From: d, To: d}
	rows, goals, err := s.rowsAndGoals(ctx, d, dailyQuery(w))
	if err != nil {
		return nil, fmt.Errorf("loading day %s: %w", analysis.DayKey(d), err)
	}

	days := analysis.BuildDayDashboards(w, rows, goals.AvgSleepTargetHours, analysis.ParseScoreMode(goals.SleepScoreMode))
	return &days[0], nil
}

// Calendar returns the Sunday-start month grid containing month and the
// weekly summary ending today
func (s insights) Calendar(ctx context.Context, month, now time.Time) (*analysis.CalendarPayload, error) {
	grid := analysis.MonthGrid(month)
	week := analysis.NewWindow(analysis.Today(now), analysis.AlertWeekDays)

	var monthRows, weekRows analysis.DailyRows
	var mode analysis.ScoreMode
	var goalHours float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, goals, err := s.rowsAndGoals(gctx, now, dailyQuery(grid))
		if err != nil {
			return err
		}
		monthRows = rows
		goalHours = goals.AvgSleepTargetHours
		mode = analysis.ParseScoreMode(goals.SleepScoreMode)
		return nil
	})
	g.Go(func() (err error) {
		weekRows, err = s.src.rows(gctx, now, rowQuery{Activity: week, Sleep: week, Zones: week})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading calendar %s: %w", month.UTC().Format(analysis.MonthKeyLayout), err)
	}

	out := analysis.BuildCalendar(month, monthRows, weekRows, goalHours, mode, now)
	return &out, nil
}

// Goals returns the weekly goals with progress over the last 7 days
func (s insights) Goals(ctx context.Context, now time.Time) (*analysis.GoalsPayload, error) {
	week := analysis.NewWindow(analysis.Today(now), analysis.AlertWeekDays)
	rows, goals, err := s.rowsAndGoals(ctx, now, rowQuery{Activity: week, Sleep: week, Zones: week})
	if err != nil {
		return nil, fmt.Errorf("loading goal progress: %w", err)
	}

	out := analysis.BuildGoals(analysis.BuildWeeklySummary(rows, now), goals)
	return &out, nil
}
