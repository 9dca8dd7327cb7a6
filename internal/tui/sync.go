package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthdash/internal/service"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	days        int
	unavailable string
	demo        bool

	syncing  bool
	progress chan service.SyncProgress
	latest   service.SyncProgress
	warnings []string
	result   *service.SyncResult
	err      error
	done     bool
}

// NewSyncModel creates a new sync model. unavailable explains a nil service.
func NewSyncModel(ss *service.SyncService, days int, unavailable string, demo bool) SyncModel {
	return SyncModel{
		syncService: ss,
		days:        max(days, 1),
		unavailable: unavailable,
		demo:        demo,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		p := service.SyncProgress(msg)
		if p.Warning != "" {
			m.warnings = append(m.warnings, p.Warning)
		} else {
			m.latest = p
		}
		return m, waitForProgress(m.progress)

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if !m.syncing && m.syncService != nil {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.done = false
				m.err = nil
				m.result = nil
				m.warnings = nil
				m.latest = service.SyncProgress{}
				m.progress = make(chan service.SyncProgress, 16)
				return m, tea.Batch(m.runSync(m.progress), waitForProgress(m.progress))
			}
		}
	}
	return m, nil
}

func (m SyncModel) runSync(progress chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		defer close(progress)
		result, err := m.syncService.AutoSync(context.Background(), m.days, progress)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

// waitForProgress relays one progress update; a closed channel ends the relay
func waitForProgress(ch <-chan service.SyncProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return syncProgressMsg(p)
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Fitbit Sync")}

	switch {
	case m.demo:
		sections = append(sections, statusStyle.Render("  Demo mode serves synthetic data; there is nothing to sync."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	case m.syncService == nil:
		sections = append(sections, warningStyle.Render("  Sync unavailable: "+m.unavailable))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, m.renderWarnings())
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	switch {
	case m.done:
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' for the dashboard"))
	case m.syncing:
		sections = append(sections, m.renderProgress())
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	lines := []string{
		"",
		fmt.Sprintf("  Pull the last %d day(s) from Fitbit:", m.days),
		"",
		"  1. Activity, sleep and heart zones",
		"  2. Workouts and recovery biomarkers",
		"  3. Evaluate alerts",
		"",
	}

	if last, err := m.syncService.LastSuccess(); err == nil && !last.IsZero() {
		lines = append(lines, statusStyle.Render("  Last synced "+humanize.Time(last)))
	}
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API budget: %d requests left this hour", m.syncService.RateLimitRemaining())))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	p := m.latest
	lines := []string{"", "  Syncing with Fitbit...", ""}

	if p.Total > 0 {
		percent := p.Completed * 100 / p.Total
		lines = append(lines, "  "+RenderProgressBar(percent, 30)+fmt.Sprintf(" %d/%d", p.Completed, p.Total))
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  %s (attempt %d)", p.Day, p.Attempt)))
	}
	lines = append(lines, m.renderWarnings())

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderWarnings() string {
	var lines []string
	for _, w := range m.warnings {
		lines = append(lines, warningStyle.Render("  ! "+w))
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	if m.result == nil {
		return ""
	}

	r := m.result
	style := successStyle
	if r.Status != "SUCCESS" {
		style = warningStyle
	}

	lines := []string{
		"",
		style.Render("  " + r.Message()),
		statusStyle.Render(fmt.Sprintf("  %s → %s · %s · %d attempt(s)", r.From, r.To, r.Status, r.Attempts)),
	}
	if r.AlertsCreated > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d alert(s) raised, see screen 4", r.AlertsCreated)))
	}
	for _, w := range r.Warnings {
		lines = append(lines, warningStyle.Render("  ! "+w))
	}

	return strings.Join(lines, "\n")
}
