package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"healthdash/internal/analysis"
	"healthdash/internal/store"
)

// rowQuery names the window to read for each row kind. A zero window skips that kind.
type rowQuery struct {
	Activity analysis.Window
	Sleep    analysis.Window
	Zones    analysis.Window
	Recovery analysis.Window
	Logs     analysis.Window
}

// dailyQuery reads activity, sleep, zones and logs over the same window
func dailyQuery(w analysis.Window) rowQuery {
	return rowQuery{Activity: w, Sleep: w, Zones: w, Logs: w}
}

func skip(w analysis.Window) bool {
	return w.From.IsZero() && w.To.IsZero()
}

// rowSource supplies raw rows and the user's singletons to the calculators
type rowSource interface {
	rows(ctx context.Context, now time.Time, q rowQuery) (analysis.DailyRows, error)
	goals(ctx context.Context) (store.WeeklyGoals, error)
	alertPreference(ctx context.Context) (store.AlertPreference, error)
}

// storeSource reads one user's rows from the database
type storeSource struct {
	db     *store.DB
	userID string
}

// rows fetches every requested kind concurrently. Any failed read fails the
// whole load with a store.ErrFetch error so callers never mistake it for no data.
func (s *storeSource) rows(ctx context.Context, _ time.Time, q rowQuery) (analysis.DailyRows, error) {
	var rows analysis.DailyRows
	g, ctx := errgroup.WithContext(ctx)

	if !skip(q.Activity) {
		g.Go(func() (err error) {
			rows.Activity, err = s.db.GetDailyActivity(ctx, s.userID, q.Activity.Range())
			return err
		})
	}
	if !skip(q.Sleep) {
		g.Go(func() (err error) {
			rows.Sleep, err = s.db.GetDailySleep(ctx, s.userID, q.Sleep.Range())
			return err
		})
	}
	if !skip(q.Zones) {
		g.Go(func() (err error) {
			rows.Zones, err = s.db.GetDailyHeartZones(ctx, s.userID, q.Zones.Range())
			return err
		})
	}
	if !skip(q.Recovery) {
		g.Go(func() (err error) {
			rows.Recovery, err = s.db.GetDailyRecovery(ctx, s.userID, q.Recovery.Range())
			return err
		})
	}
	if !skip(q.Logs) {
		g.Go(func() (err error) {
			rows.Logs, err = s.db.GetActivityLogs(ctx, s.userID, q.Logs.Range())
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return analysis.DailyRows{}, err
	}
	return rows, nil
}

func (s *storeSource) goals(ctx context.Context) (store.WeeklyGoals, error) {
	g, err := s.db.GetOrCreateWeeklyGoals(ctx, s.userID)
	if err != nil {
		return store.WeeklyGoals{}, err
	}
	return *g, nil
}

func (s *storeSource) alertPreference(ctx context.Context) (store.AlertPreference, error) {
	p, err := s.db.GetOrCreateAlertPreference(ctx, s.userID)
	if err != nil {
		return store.AlertPreference{}, err
	}
	return *p, nil
}

// CalendarFunc produces synthetic daily rows ending on now
type CalendarFunc func(now time.Time) analysis.DailyRows

// demoSource serves windows cut from a synthetic calendar
type demoSource struct {
	calendar CalendarFunc
}

func (s *demoSource) rows(_ context.Context, now time.Time, q rowQuery) (analysis.DailyRows, error) {
	cal := s.calendar(now)
	var rows analysis.DailyRows
	if !skip(q.Activity) {
		rows.Activity = cal.Between(q.Activity).Activity
	}
	if !skip(q.Sleep) {
		rows.Sleep = cal.Between(q.Sleep).Sleep
	}
	if !skip(q.Zones) {
		rows.Zones = cal.Between(q.Zones).Zones
	}
	if !skip(q.Recovery) {
		rows.Recovery = cal.Between(q.Recovery).Recovery
	}
	if !skip(q.Logs) {
		rows.Logs = cal.Between(q.Logs).Logs
	}
	return rows, nil
}

func (s *demoSource) goals(context.Context) (store.WeeklyGoals, error) {
	return store.DefaultWeeklyGoals(analysis.DemoUserID), nil
}

func (s *demoSource) alertPreference(context.Context) (store.AlertPreference, error) {
	return store.DefaultAlertPreference(analysis.DemoUserID), nil
}
