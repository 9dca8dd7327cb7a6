package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthdash/internal/service"
)

// DashboardModel is the landing screen
type DashboardModel struct {
	insights service.Insights
	now      func() time.Time
	data     *service.Overview
	loading  bool
	err      error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(ins service.Insights, now func() time.Time) DashboardModel {
	return DashboardModel{
		insights: ins,
		now:      now,
		loading:  true,
	}
}

// Init loads the overview
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.insights.Overview(context.Background(), m.now())
	return dashboardDataMsg{data: data, err: err}
}

type dashboardDataMsg struct {
	data *service.Overview
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil {
		return "\n  No data available. Press 's' to sync with Fitbit."
	}

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderTodayCard(), "  ", m.renderReadinessCard())
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderGoalsCard(), "  ", m.renderRecoveryCard())
	help := statusStyle.Render("Press 'r' to refresh, 's' to sync, '2' for insights")

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, help)
}

func (m DashboardModel) renderTodayCard() string {
	t := m.data.Today
	title := cardTitleStyle.Render("Today · " + m.data.Date)

	score := "--"
	if m.data.Sleep.Latest != nil {
		score = scoreStyle(*m.data.Sleep.Latest).Render(fmt.Sprint(*m.data.Sleep.Latest))
	}
	avg := ""
	if m.data.Sleep.Average7d != nil {
		avg = fmt.Sprintf("7d %d", *m.data.Sleep.Average7d)
	}

	lines := []string{
		RenderMetric("Steps", humanize.Comma(int64(t.Steps)), ""),
		RenderMetric("Active minutes", fmt.Sprint(t.ActiveMinutes), ""),
		RenderMetric("Sedentary", formatMinutes(t.SedentaryMinutes), ""),
		RenderMetric("Sleep", formatMinutes(t.SleepMinutes), ""),
		RenderMetric("Sleep score", score, avg),
		RenderMetric("Zone 2", fmt.Sprintf("%d min", t.Zone2Minutes), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderReadinessCard() string {
	r := m.data.Readiness
	title := cardTitleStyle.Render("Readiness")

	lines := []string{
		scoreStyle(r.Readiness.Score).Bold(true).Render(fmt.Sprintf("%d  %s", r.Readiness.Score, r.Readiness.Label)),
		"",
	}
	for _, reason := range r.Readiness.Reasons {
		lines = append(lines, helpDescStyle.Render("• "+reason))
	}

	rhr := "--"
	if r.Baseline.TodayRHR != nil {
		rhr = fmt.Sprintf("%d bpm", *r.Baseline.TodayRHR)
	}
	delta := ""
	if r.Baseline.DeltaVs30d != nil {
		delta = fmt.Sprintf("%+.1f vs 30d", *r.Baseline.DeltaVs30d)
	}
	lines = append(lines, "", RenderMetric("Resting HR", rhr, delta))

	p := r.Planner
	lines = append(lines, RenderMetric("Zone 2 days", fmt.Sprintf("%d / %d", p.CompletedZone2Days, p.TargetZone2Days), ""))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderGoalsCard() string {
	title := cardTitleStyle.Render("Weekly Goals")

	var lines []string
	for _, g := range m.data.Goals.Progress {
		lines = append(lines,
			metricLabelStyle.Render(g.Label)+RenderProgressBar(g.Percent, 12)+
				scoreStyle(g.Percent).Render(fmt.Sprintf(" %3d%%", g.Percent)))
	}
	for _, n := range m.data.Goals.Nudges {
		lines = append(lines, helpDescStyle.Render("• "+n))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderRecoveryCard() string {
	rec := m.data.Recovery
	title := cardTitleStyle.Render("Recovery")

	if !rec.HasAnyData {
		return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title,
			helpDescStyle.Render("No biomarkers yet. They need a device that records them.")))
	}

	var lines []string
	for _, metric := range rec.Metrics() {
		if metric.Value == nil {
			continue
		}
		delta := ""
		if metric.Delta7d != nil {
			delta = fmt.Sprintf("%+.1f", *metric.Delta7d)
		}
		lines = append(lines, RenderMetric(metric.Label, fmt.Sprintf("%.1f %s", *metric.Value, metric.Unit), delta))
	}
	for _, note := range rec.Notes {
		lines = append(lines, helpDescStyle.Render("• "+note))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func formatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
