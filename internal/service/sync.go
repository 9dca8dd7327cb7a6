package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"healthdash/internal/analysis"
	"healthdash/internal/fitbit"
	"healthdash/internal/store"
)

// ErrInvalidRange is returned when a sync range ends before it starts
var ErrInvalidRange = errors.New("invalid date range: from must not be after to")

// SyncService orchestrates syncing daily data from Fitbit
type SyncService struct {
	client      *fitbit.Client
	store       *store.DB
	userID      string
	alerts      *AlertService
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
	breakerWait time.Duration
	now         func() time.Time
	wait        func(ctx context.Context, d time.Duration) error
}

// SyncOption configures a SyncService
type SyncOption func(*SyncService)

// WithMaxAttempts sets how many times a failed run is attempted
func WithMaxAttempts(n int) SyncOption {
	return func(s *SyncService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBackoff sets the delay unit between attempts; attempt n waits n units
func WithBackoff(d time.Duration) SyncOption {
	return func(s *SyncService) {
		s.backoff = d
	}
}

// WithBreakerWait sets how long a run waits when the Fitbit breaker is open.
// It should match the client's breaker cooldown.
func WithBreakerWait(d time.Duration) SyncOption {
	return func(s *SyncService) {
		s.breakerWait = d
	}
}

// WithClock sets the time source for run timestamps and auto sync ranges
func WithClock(now func() time.Time) SyncOption {
	return func(s *SyncService) {
		s.now = now
	}
}

// WithAlerts evaluates alerts after every successful run
func WithAlerts(a *AlertService) SyncOption {
	return func(s *SyncService) {
		s.alerts = a
	}
}

// NewSyncService creates a sync service that writes userID's rows
func NewSyncService(client *fitbit.Client, db *store.DB, userID string, logger *slog.Logger, opts ...SyncOption) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SyncService{
		client:      client,
		store:       db,
		userID:      userID,
		logger:      logger,
		maxAttempts: DefaultMaxSyncAttempts,
		backoff:     SyncRetryBackoff,
		breakerWait: fitbit.BreakerCooldown,
		now:         time.Now,
		wait:        sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Attempt   int
	Total     int
	Completed int
	Day       string
	Warning   string
}

// SyncResult contains the outcome of a logged sync run
type SyncResult struct {
	RunID         string   `json:"runId"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	Status        string   `json:"status"`
	SyncedDays    int      `json:"syncedDays"`
	Attempts      int      `json:"attempts"`
	Warnings      []string `json:"warnings"`
	AlertsCreated int      `json:"alertsCreated"`
}

// Message summarizes the run for display
func (r *SyncResult) Message() string {
	return fmt.Sprintf("Sync completed for %d day(s).", r.SyncedDays)
}

// AutoSyncRange returns the days days ending on now's calendar day
func AutoSyncRange(now time.Time, days int) (from, to time.Time) {
	to = analysis.Today(now)
	return analysis.AddDays(to, -(max(1, days) - 1)), to
}

// AutoSync syncs the trailing days days as an automatic run
func (s *SyncService) AutoSync(ctx context.Context, days int, progress chan<- SyncProgress) (*SyncResult, error) {
	from, to := AutoSyncRange(s.now(), days)
	return s.SyncRange(ctx, from, to, TriggerAuto, progress)
}

// SyncRange syncs every day in from..to as one logged run. Retryable
// failures (rate limits, timeouts, server and network errors) restart the
// run after a growing delay, up to the attempt limit. Days that fail for any
// other reason become warnings and the run ends PARTIAL. When alerts are
// configured they are evaluated after a successful run.
func (s *SyncService) SyncRange(ctx context.Context, from, to time.Time, trigger string, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	from, to = analysis.Today(from), analysis.Today(to)
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	run := &store.SyncRun{
		UserID:    s.userID,
		Trigger:   trigger,
		Status:    store.SyncRunning,
		FromDate:  analysis.DayKey(from),
		ToDate:    analysis.DayKey(to),
		StartedAt: s.now(),
	}
	if err := s.store.CreateSyncRun(ctx, run); err != nil {
		return nil, err
	}
	log := s.logger.With("user_id", s.userID, "run_id", run.ID, "from", run.FromDate, "to", run.ToDate)
	log.Info("sync started", "trigger", trigger)

	days := analysis.EnumerateDays(from, to)
	attempt, cooldowns := 1, 0
	for {
		synced, warnings, err := s.syncDays(ctx, days, attempt, progress)
		run.Attempts = attempt
		run.SyncedDays = synced

		if err == nil {
			return s.finishRun(ctx, run, warnings, log)
		}

		// An open breaker refused the requests; waiting it out does not use an attempt
		switch {
		case ctx.Err() != nil:
		case fitbit.IsCircuitOpen(err) && cooldowns < MaxBreakerWaits:
			cooldowns++
			log.Warn("fitbit circuit open, waiting", "attempt", attempt, "wait", s.breakerWait)
			if err = s.wait(ctx, s.breakerWait); err == nil {
				continue
			}
		case fitbit.IsRetryable(err) && attempt < s.maxAttempts:
			log.Warn("sync attempt failed, retrying", "attempt", attempt, "error", err)
			if err = s.wait(ctx, s.backoff*time.Duration(attempt)); err == nil {
				attempt++
				continue
			}
		}

		s.failRun(ctx, run, err, log)
		return nil, fmt.Errorf("syncing %s..%s: %w", run.FromDate, run.ToDate, err)
	}
}

func (s *SyncService) finishRun(ctx context.Context, run *store.SyncRun, warnings []string, log *slog.Logger) (*SyncResult, error) {
	now := s.now()
	run.Status = store.SyncSuccess
	if len(warnings) > 0 {
		run.Status = store.SyncPartial
	}
	run.Warnings = strings.Join(warnings, "\n")
	run.LastError = ""
	run.EndedAt = &now
	if err := s.store.UpdateSyncRun(ctx, run); err != nil {
		return nil, err
	}

	if err := s.store.SetSyncState(store.SyncStateLastSuccess, now.UTC().Format(time.RFC3339)); err != nil {
		log.Warn("recording sync state", "error", err)
	}
	if err := s.store.SetSyncState(store.SyncStateLastDay, run.ToDate); err != nil {
		log.Warn("recording sync state", "error", err)
	}

	result := &SyncResult{
		RunID:      run.ID,
		From:       run.FromDate,
		To:         run.ToDate,
		Status:     run.Status,
		SyncedDays: run.SyncedDays,
		Attempts:   run.Attempts,
		Warnings:   warnings,
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	log.Info("sync finished", "status", run.Status, "days", run.SyncedDays, "attempts", run.Attempts)

	if s.alerts != nil {
		alerts, err := s.alerts.EvaluateAlerts(ctx, now)
		if err != nil {
			return result, fmt.Errorf("evaluating alerts: %w", err)
		}
		result.AlertsCreated = len(alerts)
	}
	return result, nil
}

// failRun records the failure even when ctx is already cancelled
func (s *SyncService) failRun(ctx context.Context, run *store.SyncRun, cause error, log *slog.Logger) {
	now := s.now()
	run.Status = store.SyncFailed
	run.LastError = cause.Error()
	run.EndedAt = &now
	if err := s.store.UpdateSyncRun(context.WithoutCancel(ctx), run); err != nil {
		log.Error("recording failed sync run", "error", err)
	}
	log.Error("sync failed", "attempts", run.Attempts, "error", cause)
}

// syncDays syncs each day in order. A retryable error aborts the pass so the
// whole run can be retried; any other per-day failure becomes a warning.
func (s *SyncService) syncDays(ctx context.Context, days []time.Time, attempt int, progress chan<- SyncProgress) (int, []string, error) {
	var warnings []string
	synced := 0

	for i, day := range days {
		if err := ctx.Err(); err != nil {
			return synced, warnings, err
		}
		key := analysis.DayKey(day)
		s.report(ctx, progress, SyncProgress{Attempt: attempt, Total: len(days), Completed: i, Day: key})

		if err := s.syncDay(ctx, day); err != nil {
			if fitbit.IsRetryable(err) {
				return synced, warnings, err
			}
			msg := fmt.Sprintf("Failed syncing %s.", key)
			warnings = append(warnings, msg)
			s.logger.Warn("day sync failed", "user_id", s.userID, "day_key", key, "error", err)
			s.report(ctx, progress, SyncProgress{Attempt: attempt, Total: len(days), Completed: i, Day: key, Warning: msg})
			continue
		}
		synced++
	}

	s.report(ctx, progress, SyncProgress{Attempt: attempt, Total: len(days), Completed: len(days)})
	return synced, warnings, nil
}

func (s *SyncService) report(ctx context.Context, progress chan<- SyncProgress, p SyncProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	case <-ctx.Done():
	}
}

// dayPayloads holds every Fitbit response for one day. Optional endpoints
// are nil when the account lacks the feature or scope.
type dayPayloads struct {
	activity  *fitbit.ActivitySummaryResponse
	sleep     *fitbit.SleepResponse
	heart     *fitbit.HeartResponse
	cardio    *fitbit.CardioScoreResponse
	hrv       *fitbit.HRVResponse
	br        *fitbit.BreathingRateResponse
	spo2      *fitbit.SpO2Response
	skinTemp  *fitbit.TempResponse
	coreTemp  *fitbit.TempResponse
	logs      *fitbit.ActivityListResponse
	logsError error
}

// syncDay fetches every endpoint for day concurrently, then writes the rows
func (s *SyncService) syncDay(ctx context.Context, day time.Time) error {
	p, err := s.fetchDay(ctx, day)
	if err != nil {
		return err
	}

	if err := s.store.UpsertDailyActivity(ctx, convertActivity(s.userID, day, p.activity)); err != nil {
		return fmt.Errorf("storing activity: %w", err)
	}
	if err := s.store.UpsertDailySleep(ctx, convertSleep(s.userID, day, p.sleep)); err != nil {
		return fmt.Errorf("storing sleep: %w", err)
	}
	if err := s.store.UpsertDailyHeartZones(ctx, convertHeartZones(s.userID, day, p.heart)); err != nil {
		return fmt.Errorf("storing heart zones: %w", err)
	}
	if err := s.store.UpsertDailyRecovery(ctx, convertRecovery(s.userID, day, p)); err != nil {
		return fmt.Errorf("storing recovery: %w", err)
	}

	// A failed log fetch keeps the stored logs instead of wiping the day
	if p.logsError != nil {
		s.logger.Warn("activity logs unavailable", "user_id", s.userID, "day_key", analysis.DayKey(day), "error", p.logsError)
		return nil
	}
	logs := convertActivityLogs(s.userID, day, p.logs)
	if err := s.store.ReplaceActivityLogs(ctx, s.userID, store.DateRange{From: day, To: day}, logs); err != nil {
		return fmt.Errorf("storing activity logs: %w", err)
	}
	return nil
}

func (s *SyncService) fetchDay(ctx context.Context, day time.Time) (*dayPayloads, error) {
	var p dayPayloads
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		p.activity, err = s.client.GetActivitySummary(ctx, day)
		return err
	})
	g.Go(func() (err error) {
		p.sleep, err = s.client.GetSleep(ctx, day)
		return err
	})
	g.Go(func() (err error) {
		p.heart, err = s.client.GetHeart(ctx, day)
		return err
	})
	g.Go(func() (err error) {
		p.cardio, err = optional(s.client.GetCardioScore(ctx, day))
		return err
	})
	g.Go(func() (err error) {
		p.hrv, err = optional(s.client.GetHRV(ctx, day))
		return err
	})
	g.Go(func() (err error) {
		p.br, err = optional(s.client.GetBreathingRate(ctx, day))
		return err
	})
	g.Go(func() (err error) {
		p.spo2, err = optional(s.client.GetSpO2(ctx, day))
		return err
	})
	g.Go(func() (err error) {
		p.skinTemp, err = optional(s.client.GetSkinTemp(ctx, day))
		return err
	})
	g.Go(func() (err error) {
		p.coreTemp, err = optional(s.client.GetCoreTemp(ctx, day))
		return err
	})
	g.Go(func() error {
		logs, err := s.client.GetActivityLogs(ctx, day)
		if errors.Is(err, fitbit.ErrRateLimited) || fitbit.IsCircuitOpen(err) {
			return err
		}
		p.logs, p.logsError = logs, err
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &p, nil
}

// optional drops the error of a premium endpoint unless it is a rate limit
// or an open breaker, which have to stop the run
func optional[T any](v *T, err error) (*T, error) {
	if err == nil {
		return v, nil
	}
	if errors.Is(err, fitbit.ErrRateLimited) || fitbit.IsCircuitOpen(err) {
		return nil, err
	}
	return nil, nil
}

// LastSuccess returns when the last run finished successfully, zero if never
func (s *SyncService) LastSuccess() (time.Time, error) {
	v, err := s.store.GetSyncState(store.SyncStateLastSuccess)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// RateLimitRemaining returns the Fitbit requests left this hour
func (s *SyncService) RateLimitRemaining() int {
	remaining, _ := s.client.RateLimitStatus()
	return remaining
}

func convertActivity(userID string, day time.Time, r *fitbit.ActivitySummaryResponse) store.DailyActivity {
	a := store.DailyActivity{UserID: userID, Date: day}
	if r == nil || r.Summary == nil {
		return a
	}
	sum := r.Summary
	a.Steps = sum.Steps
	a.SedentaryMinutes = sum.SedentaryMinutes
	a.LightlyActiveMinutes = sum.LightlyActiveMinutes
	a.FairlyActiveMinutes = sum.FairlyActiveMinutes
	a.VeryActiveMinutes = sum.VeryActiveMinutes
	a.ActiveMinutes = sum.VeryActiveMinutes + sum.FairlyActiveMinutes + sum.LightlyActiveMinutes
	a.CaloriesOut = sum.CaloriesOut
	return a
}

// convertSleep prefers the summary totals and takes efficiency and times
// from the main session
func convertSleep(userID string, day time.Time, r *fitbit.SleepResponse) store.DailySleep {
	s := store.DailySleep{UserID: userID, Date: day}
	if r == nil {
		return s
	}
	main := r.MainSleep()
	if main != nil {
		s.MinutesAsleep = main.MinutesAsleep
		s.TimeInBed = main.TimeInBed
		s.Efficiency = main.Efficiency
		s.SleepStart = parseTimePtr(main.StartTime)
		s.SleepEnd = parseTimePtr(main.EndTime)
	}
	if sum := r.Summary; sum != nil {
		if sum.TotalMinutesAsleep != nil {
			s.MinutesAsleep = *sum.TotalMinutesAsleep
		}
		if sum.TotalTimeInBed != nil {
			s.TimeInBed = *sum.TotalTimeInBed
		}
		if st := sum.Stages; st != nil {
			s.DeepMinutes = st.Deep
			s.RemMinutes = st.Rem
			s.LightMinutes = st.Light
			s.WakeMinutes = st.Wake
		}
	}
	return s
}

func parseTimePtr(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := fitbit.ParseTime(v)
	if err != nil {
		return nil
	}
	return &t
}

func convertHeartZones(userID string, day time.Time, r *fitbit.HeartResponse) store.DailyHeartZones {
	z := store.DailyHeartZones{UserID: userID, Date: day}
	if r == nil {
		return z
	}
	v := r.Value()
	if v == nil {
		return z
	}
	z.Zone2Minutes = v.ZoneMinutes(fitbit.ZoneFatBurn)
	z.CardioMinutes = v.ZoneMinutes(fitbit.ZoneCardio)
	z.PeakMinutes = v.ZoneMinutes(fitbit.ZonePeak)
	z.OutOfRangeMinutes = v.ZoneMinutes(fitbit.ZoneOutOfRange)
	z.RestingHeartRate = v.RestingHeartRate
	return z
}

func convertRecovery(userID string, day time.Time, p *dayPayloads) store.DailyRecovery {
	r := store.DailyRecovery{UserID: userID, Date: day}
	if p.cardio != nil && len(p.cardio.CardioScore) > 0 {
		v := p.cardio.CardioScore[0].Value
		r.CardioFitnessScore = v.CardioFitnessScore.Ptr()
		r.Vo2Max = v.Vo2Max.Ptr()
	}
	if p.hrv != nil && len(p.hrv.HRV) > 0 {
		r.HrvRmssd = p.hrv.HRV[0].Value.DailyRmssd
		r.HrvDeepRmssd = p.hrv.HRV[0].Value.DeepRmssd
	}
	if p.br != nil && len(p.br.BR) > 0 {
		r.BreathingRate = p.br.BR[0].Value.BreathingRate
	}
	if p.spo2 != nil && p.spo2.Value != nil {
		r.Spo2Avg = p.spo2.Value.Avg
		r.Spo2Min = p.spo2.Value.Min
		r.Spo2Max = p.spo2.Value.Max
	}
	if p.skinTemp != nil && len(p.skinTemp.TempSkin) > 0 {
		r.SkinTempC = p.skinTemp.TempSkin[0].Value.NightlyRelative
	}
	if p.coreTemp != nil && len(p.coreTemp.TempCore) > 0 {
		r.CoreTempC = p.coreTemp.TempCore[0].Value
	}
	return r
}

// convertActivityLogs keeps the logs that started on day (UTC)
func convertActivityLogs(userID string, day time.Time, r *fitbit.ActivityListResponse) []store.ActivityLog {
	logs := []store.ActivityLog{}
	if r == nil {
		return logs
	}
	end := analysis.AddDays(day, 1)
	for _, a := range r.Activities {
		if a.StartTime == "" {
			continue
		}
		start, err := fitbit.ParseTime(a.StartTime)
		if err != nil {
			continue
		}
		start = start.UTC()
		if start.Before(day) || !start.Before(end) {
			continue
		}

		name := a.ActivityName
		if name == "" {
			name = "Activity"
		}
		var id string
		if a.LogID != 0 {
			id = strconv.FormatInt(a.LogID, 10)
		}
		logs = append(logs, store.ActivityLog{
			ID:              id,
			UserID:          userID,
			Date:            day,
			StartTime:       start,
			DurationMinutes: max(1, analysis.RoundInt(float64(a.Duration)/60000)),
			Name:            name,
			Calories:        a.Calories,
			Distance:        a.Distance,
			Steps:           a.Steps,
		})
	}
	return logs
}

// statusOf returns the HTTP status behind err, 0 if it isn't an API error
func statusOf(err error) int {
	var apiErr *fitbit.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotConnected reports whether err means Fitbit needs a fresh login
func IsNotConnected(err error) bool {
	return errors.Is(err, store.ErrNoAuth) || statusOf(err) == http.StatusUnauthorized
}
