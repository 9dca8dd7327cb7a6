package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"healthdash/internal/analysis"
	"healthdash/internal/store"
)

// Alerter evaluates today's alert rules for one user
type Alerter interface {
	EvaluateAlerts(ctx context.Context, now time.Time) ([]store.AlertEvent, error)
}

// alertCandidates loads the rule inputs and runs every rule. It returns no
// candidates when the user has alerts switched off.
func (s insights) alertCandidates(ctx context.Context, now time.Time) ([]analysis.AlertCandidate, string, error) {
	today := analysis.Today(now)

	var prefs store.AlertPreference
	var rows analysis.DailyRows

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		prefs, err = s.src.alertPreference(gctx)
		return err
	})
	g.Go(func() (err error) {
		rows, err = s.src.rows(gctx, now, rowQuery{
			Activity: analysis.NewWindow(today, analysis.AlertWeekDays),
			Zones:    analysis.NewWindow(today, analysis.AlertZoneHistoryDays),
			Sleep:    analysis.NewWindow(today, analysis.AlertSleepHistoryDays),
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", fmt.Errorf("loading alert inputs: %w", err)
	}

	if !prefs.AlertsEnabled {
		return nil, prefs.UserID, nil
	}

	snap := analysis.BuildAlertSnapshot(analysis.AlertInputs{
		Activity: rows.Activity,
		Zones:    rows.Zones,
		Sleep:    rows.Sleep,
	}, now)
	return analysis.EvaluateAlertRules(snap, prefs), prefs.UserID, nil
}

// AlertService evaluates and persists alerts for one user
type AlertService struct {
	insights
	store  *store.DB
	userID string
	logger *slog.Logger
}

// NewAlertService creates an alert service for userID
func NewAlertService(db *store.DB, userID string, logger *slog.Logger) *AlertService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertService{
		insights: insights{src: &storeSource{db: db, userID: userID}},
		store:    db,
		userID:   userID,
		logger:   logger,
	}
}

// EvaluateAlerts runs every rule against today's data and upserts one event
// per triggered rule, keyed by (user, day, type). Re-running on the same day
// updates the existing rows instead of adding new ones; rules that no longer
// trigger leave their rows alone. Writes run concurrently and the first
// failed write is returned.
func (a *AlertService) EvaluateAlerts(ctx context.Context, now time.Time) ([]store.AlertEvent, error) {
	candidates, _, err := a.alertCandidates(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []store.AlertEvent{}, nil
	}

	dayKey := analysis.DayKey(analysis.Today(now))
	results := make([]store.AlertEvent, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			saved, err := a.store.UpsertAlertEvent(gctx, store.AlertEvent{
				UserID:    a.userID,
				DayKey:    dayKey,
				Type:      c.Type,
				Severity:  string(c.Severity),
				Message:   c.Message,
				CreatedAt: now,
			})
			if err != nil {
				return err
			}
			results[i] = *saved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("saving alerts: %w", err)
	}

	a.logger.Info("alerts evaluated", "user_id", a.userID, "day_key", dayKey, "count", len(results))
	return results, nil
}

// ListAlerts returns the most recent alerts, newest first
func (a *AlertService) ListAlerts(ctx context.Context, limit int) ([]store.AlertEvent, error) {
	if limit <= 0 {
		limit = store.DefaultAlertLimit
	}
	alerts, err := a.store.ListAlerts(ctx, a.userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	return alerts, nil
}

// ResolveAlert marks one alert resolved
func (a *AlertService) ResolveAlert(ctx context.Context, id string, now time.Time) error {
	if err := a.store.ResolveAlert(ctx, a.userID, id, now); err != nil {
		return fmt.Errorf("resolving alert %s: %w", id, err)
	}
	a.logger.Info("alert resolved", "user_id", a.userID, "id", id)
	return nil
}

// Preferences returns the user's alert thresholds
func (a *AlertService) Preferences(ctx context.Context) (*store.AlertPreference, error) {
	return a.store.GetOrCreateAlertPreference(ctx, a.userID)
}

// UpdatePreferences saves new alert thresholds for the user
func (a *AlertService) UpdatePreferences(ctx context.Context, p store.AlertPreference) error {
	p.UserID = a.userID
	if err := validateSettings(p); err != nil {
		return err
	}
	if err := a.store.UpdateAlertPreference(ctx, p); err != nil {
		return fmt.Errorf("updating alert preferences: %w", err)
	}
	return nil
}

// EvaluateAlerts builds today's alerts from the synthetic calendar without
// persisting them
func (d *DemoService) EvaluateAlerts(ctx context.Context, now time.Time) ([]store.AlertEvent, error) {
	candidates, userID, err := d.alertCandidates(ctx, now)
	if err != nil {
		return nil, err
	}

	dayKey := analysis.DayKey(analysis.Today(now))
	out := make([]store.AlertEvent, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, store.AlertEvent{
			ID:        fmt.Sprintf("demo-%s-%s", dayKey, c.Type),
			UserID:    userID,
			DayKey:    dayKey,
			Type:      c.Type,
			Severity:  string(c.Severity),
			Message:   c.Message,
			CreatedAt: now,
		})
	}
	return out, nil
}

var (
	_ Alerter = (*AlertService)(nil)
	_ Alerter = (*DemoService)(nil)
)
