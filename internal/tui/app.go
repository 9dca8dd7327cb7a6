package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthdash/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenInsights
	ScreenTrends
	ScreenAlerts
	ScreenSync
	ScreenHelp
)

// Deps are the services the screens read from. Alerts and Sync are nil in
// demo mode.
type Deps struct {
	Insights service.Insights
	Alerter  service.Alerter
	Alerts   *service.AlertService
	Sync     *service.SyncService

	Now          func() time.Time
	ChartDays    int
	AutoSyncDays int
	Demo         bool

	// SyncUnavailable explains why Sync is nil outside demo mode
	SyncUnavailable string
}

// App is the root Bubble Tea model
type App struct {
	deps Deps

	screen     Screen
	prevScreen Screen

	dashboard  DashboardModel
	insights   InsightsModel
	trends     TrendsModel
	alerts     AlertsModel
	syncScreen SyncModel
	help       HelpModel

	width  int
	height int
}

// NewApp creates the root model
func NewApp(deps Deps) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &App{
		deps:       deps,
		screen:     ScreenDashboard,
		dashboard:  NewDashboardModel(deps.Insights, deps.Now),
		insights:   NewInsightsModel(deps.Insights, deps.Now, 0, 0),
		trends:     NewTrendsModel(deps.Insights, deps.Now, deps.ChartDays),
		alerts:     NewAlertsModel(deps.Alerter, deps.Alerts, deps.Now),
		syncScreen: NewSyncModel(deps.Sync, deps.AutoSyncDays, deps.SyncUnavailable, deps.Demo),
		help:       NewHelpModel(),
	}
}

// Init loads the dashboard
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Screen switching is locked while a sync is running
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.deps.Insights, a.deps.Now)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenInsights
				return a, a.insights.Init()
			case "3":
				a.screen = ScreenTrends
				return a, a.trends.Init()
			case "4":
				a.screen = ScreenAlerts
				return a, a.alerts.Init()
			case "5", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The insights viewport sizes itself even when not on screen
		m, cmd := a.insights.Update(msg)
		a.insights = m.(InsightsModel)
		return a, cmd

	case SyncCompleteMsg:
		// Stay on the summary; the other screens reload when next shown
		a.alerts = NewAlertsModel(a.deps.Alerter, a.deps.Alerts, a.deps.Now)
		a.trends = NewTrendsModel(a.deps.Insights, a.deps.Now, a.deps.ChartDays)
		return a, nil
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenInsights:
		var m tea.Model
		m, cmd = a.insights.Update(msg)
		a.insights = m.(InsightsModel)
	case ScreenTrends:
		var m tea.Model
		m, cmd = a.trends.Update(msg)
		a.trends = m.(TrendsModel)
	case ScreenAlerts:
		var m tea.Model
		m, cmd = a.alerts.Update(msg)
		a.alerts = m.(AlertsModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenInsights:
		content = a.insights.View()
	case ScreenTrends:
		content = a.trends.View()
	case ScreenAlerts:
		content = a.alerts.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	header := headerStyle.Render("Health Dashboard")
	if a.deps.Demo {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", demoBadgeStyle.Render("DEMO"))
	}
	return header
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Insights", ScreenInsights},
		{"3", "Trends", ScreenTrends},
		{"4", "Alerts", ScreenAlerts},
		{"5", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// SyncCompleteMsg is sent when a sync finishes successfully
type SyncCompleteMsg struct{}
