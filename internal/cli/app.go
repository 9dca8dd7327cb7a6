package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"healthdash/internal/analysis"
	"healthdash/internal/auth"
	"healthdash/internal/config"
	"healthdash/internal/fitbit"
	"healthdash/internal/mcp"
	"healthdash/internal/service"
	"healthdash/internal/store"
	"healthdash/internal/tui"
)

// errDemoMode is returned by commands that need your stored data
var errDemoMode = errors.New("not available in demo mode")

// app carries the resolved config and lazily opened dependencies for one command
type app struct {
	out    io.Writer
	errOut io.Writer

	flags struct {
		demo     bool
		logLevel string
		date     string
		dbPath   string
	}

	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
	db     *store.DB
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.flags.demo {
		cfg.DemoMode = true
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if err := cfg.ValidateFields(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.LogLevel, a.errOut)

	a.now = time.Now
	if a.flags.date != "" {
		day, err := analysis.ParseDayKey(a.flags.date)
		if err != nil {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", a.flags.date)
		}
		a.now = func() time.Time { return day }
	}
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// newLogger builds the text logger every service receives
func newLogger(level string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func (a *app) store() (*store.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	var (
		db  *store.DB
		err error
	)
	if a.flags.dbPath != "" {
		db, err = store.OpenPath(a.flags.dbPath)
	} else {
		db, err = store.Open()
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	return db, nil
}

// readers returns the insights and alert evaluator for the current mode
func (a *app) readers() (service.Insights, service.Alerter, error) {
	if a.cfg.DemoMode {
		demo := service.NewDemoService(nil)
		return demo, demo, nil
	}
	db, err := a.store()
	if err != nil {
		return nil, nil, err
	}
	return service.NewQueryService(db, a.cfg.User.ID), service.NewAlertService(db, a.cfg.User.ID, a.logger), nil
}

func (a *app) queryService() (*service.QueryService, error) {
	if a.cfg.DemoMode {
		return nil, errDemoMode
	}
	db, err := a.store()
	if err != nil {
		return nil, err
	}
	return service.NewQueryService(db, a.cfg.User.ID), nil
}

func (a *app) alertService() (*service.AlertService, error) {
	if a.cfg.DemoMode {
		return nil, errDemoMode
	}
	db, err := a.store()
	if err != nil {
		return nil, err
	}
	return service.NewAlertService(db, a.cfg.User.ID, a.logger), nil
}

func (a *app) oauthConfig() (*oauth2.Config, error) {
	if err := a.cfg.ValidateCredentials(); err != nil {
		return nil, err
	}
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     a.cfg.Fitbit.ClientID,
		ClientSecret: a.cfg.Fitbit.ClientSecret,
		RedirectURL:  a.cfg.Fitbit.RedirectURL,
	}), nil
}

// syncService wires the Fitbit client over the stored token. Alerts are
// evaluated after every successful run.
func (a *app) syncService() (*service.SyncService, error) {
	if a.cfg.DemoMode {
		return nil, errDemoMode
	}
	oauthCfg, err := a.oauthConfig()
	if err != nil {
		return nil, err
	}
	db, err := a.store()
	if err != nil {
		return nil, err
	}

	ts, err := auth.NewStoredTokenSource(oauthCfg, db)
	if errors.Is(err, store.ErrNoAuth) {
		return nil, errors.New("fitbit is not connected, run `healthdash login` first")
	}
	if err != nil {
		return nil, fmt.Errorf("loading fitbit token: %w", err)
	}

	alerts := service.NewAlertService(db, a.cfg.User.ID, a.logger)
	return service.NewSyncService(fitbit.NewClient(ts), db, a.cfg.User.ID, a.logger,
		service.WithMaxAttempts(a.cfg.Sync.MaxAttempts),
		service.WithClock(a.now),
		service.WithAlerts(alerts),
	), nil
}

func (a *app) mcpServer() (*mcp.Server, error) {
	ins, alerter, err := a.readers()
	if err != nil {
		return nil, err
	}
	opts := []mcp.Option{mcp.WithClock(a.now)}
	if m, ok := alerter.(*service.AlertService); ok {
		opts = append(opts, mcp.WithAlertManager(m))
	}
	return mcp.NewServer(ins, alerter, a.logger, opts...), nil
}

func (a *app) runTUI(ctx context.Context) error {
	ins, alerter, err := a.readers()
	if err != nil {
		return err
	}

	deps := tui.Deps{
		Insights:  ins,
		Alerter:   alerter,
		Now:       a.now,
		ChartDays: a.cfg.Display.ChartDays,
		Demo:      a.cfg.DemoMode,
	}
	if m, ok := alerter.(*service.AlertService); ok {
		deps.Alerts = m
	}
	if !a.cfg.DemoMode {
		// Without a login the dashboard still works; the sync screen explains why it can't run
		if syncer, err := a.syncService(); err == nil {
			deps.Sync = syncer
			deps.AutoSyncDays = a.cfg.Sync.AutoSyncDays
		} else {
			deps.SyncUnavailable = err.Error()
		}
	}

	// The TUI owns the terminal; keep logs off it
	a.logger = newLogger("error", io.Discard)

	p := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
