package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthdash/internal/service"
	"healthdash/internal/store"
)

// AlertsModel lists alerts with a cursor. Without a store it shows a fresh
// evaluation instead of history.
type AlertsModel struct {
	alerter service.Alerter
	manager *service.AlertService
	now     func() time.Time
	alerts  []store.AlertEvent
	cursor  int
	loading bool
	status  string
	err     error
}

// NewAlertsModel creates a new alerts model
func NewAlertsModel(alerter service.Alerter, manager *service.AlertService, now func() time.Time) AlertsModel {
	return AlertsModel{
		alerter: alerter,
		manager: manager,
		now:     now,
		loading: true,
	}
}

type alertsLoadedMsg struct {
	alerts []store.AlertEvent
	status string
	err    error
}

// Init loads the alert list
func (m AlertsModel) Init() tea.Cmd {
	return m.list
}

func (m AlertsModel) list() tea.Msg {
	ctx := context.Background()
	if m.manager == nil {
		alerts, err := m.alerter.EvaluateAlerts(ctx, m.now())
		return alertsLoadedMsg{alerts: alerts, err: err}
	}
	alerts, err := m.manager.ListAlerts(ctx, store.DefaultAlertLimit)
	return alertsLoadedMsg{alerts: alerts, err: err}
}

func (m AlertsModel) evaluate() tea.Msg {
	ctx := context.Background()
	raised, err := m.alerter.EvaluateAlerts(ctx, m.now())
	if err != nil {
		return alertsLoadedMsg{err: err}
	}
	if m.manager == nil {
		return alertsLoadedMsg{alerts: raised, status: fmt.Sprintf("%d alert(s) for today", len(raised))}
	}
	alerts, err := m.manager.ListAlerts(ctx, store.DefaultAlertLimit)
	return alertsLoadedMsg{alerts: alerts, err: err, status: fmt.Sprintf("%d alert(s) for today", len(raised))}
}

func (m AlertsModel) resolve(id string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.manager.ResolveAlert(ctx, id, m.now()); err != nil {
			return alertsLoadedMsg{err: err}
		}
		alerts, err := m.manager.ListAlerts(ctx, store.DefaultAlertLimit)
		return alertsLoadedMsg{alerts: alerts, err: err, status: "Resolved " + id}
	}
}

// Update handles messages
func (m AlertsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case alertsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.status = msg.status
		if msg.err == nil {
			m.alerts = msg.alerts
			m.cursor = min(m.cursor, max(len(m.alerts)-1, 0))
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.alerts)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "e":
			m.loading = true
			return m, m.evaluate
		case "x", "enter":
			if m.manager != nil && m.cursor < len(m.alerts) && m.alerts[m.cursor].ResolvedAt == nil {
				m.loading = true
				return m, m.resolve(m.alerts[m.cursor].ID)
			}
		case "r":
			m.loading = true
			return m, m.list
		}
	}
	return m, nil
}

// View renders the alert list
func (m AlertsModel) View() string {
	if m.loading {
		return "\n  Loading alerts..."
	}

	var sections []string
	title := "Alerts"
	if m.manager == nil {
		title = "Alerts for today"
	}
	sections = append(sections, cardTitleStyle.Render(title))

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if len(m.alerts) == 0 {
		sections = append(sections, successStyle.Render("  Nothing to flag."))
	}
	for i, a := range m.alerts {
		row := fmt.Sprintf("%-6s  %s  %s", a.Severity, a.DayKey, a.Message)
		switch {
		case i == m.cursor:
			row = tableSelectedStyle.Render("> " + row)
		case a.ResolvedAt != nil:
			row = tableRowStyle.Render("  " + helpDescStyle.Render(row+" (resolved)"))
		default:
			row = tableRowStyle.Render("  " + severityStyle(a.Severity).Render(row))
		}
		sections = append(sections, row)
	}

	if m.cursor < len(m.alerts) {
		a := m.alerts[m.cursor]
		sections = append(sections, "", helpDescStyle.Render(fmt.Sprintf("  %s · raised %s", a.Type, humanize.Time(a.CreatedAt))))
	}

	if m.status != "" {
		sections = append(sections, successStyle.Render("  "+m.status))
	}

	keys := []string{"j/k: move", "e: evaluate today", "r: refresh"}
	if m.manager != nil {
		keys = append(keys, "x: resolve")
	}
	sections = append(sections, statusStyle.Render("  "+strings.Join(keys, "  ")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
