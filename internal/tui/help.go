package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		m.renderSection("Navigation", []keyHelp{
			{"1", "Dashboard"},
			{"2", "Insights"},
			{"3", "Trends"},
			{"4", "Alerts"},
			{"5 or s", "Sync screen"},
			{"?", "Help (this screen)"},
			{"q", "Quit"},
			{"esc", "Back / close help"},
		}),
		m.renderSection("Everywhere", []keyHelp{
			{"r", "Refresh data"},
		}),
		m.renderSection("Insights", []keyHelp{
			{"tab / →", "Next kind"},
			{"shift+tab / ←", "Previous kind"},
			{"j / k", "Scroll"},
		}),
		m.renderSection("Alerts", []keyHelp{
			{"j / k", "Move cursor"},
			{"e", "Evaluate today"},
			{"x / enter", "Resolve selected"},
		}),
		m.renderSection("Sync Screen", []keyHelp{
			{"s / enter", "Start sync"},
		}),
		m.renderMetricsHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	lines := []string{
		"",
		lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Metrics Explained"),
		"",
	}

	metrics := []struct {
		name string
		desc string
	}{
		{"Sleep score", "0-100 from duration vs goal, efficiency, deep and REM share and wake time."},
		{"Readiness", "Resting HR against your 30 day baseline plus last night's sleep."},
		{"Zone 2", "Minutes in Fitbit's Fat Burn zone. Easy aerobic work."},
		{"Sleep debt", "Hours short of your sleep goal over the last two weeks."},
		{"Trend windows", "Last 7/30/90 days against the window before."},
		{"Correlations", "Pearson r between daily metrics; shown only with enough overlapping days."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+helpDescStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
