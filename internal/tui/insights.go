package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthdash/internal/service"
)

// InsightsModel pages through the insight kinds in a scrollable view
type InsightsModel struct {
	insights service.Insights
	now      func() time.Time
	kind     int
	content  string
	viewport viewport.Model
	loading  bool
	err      error
	ready    bool
}

// NewInsightsModel creates a new insights model
func NewInsightsModel(ins service.Insights, now func() time.Time, width, height int) InsightsModel {
	m := InsightsModel{
		insights: ins,
		now:      now,
		loading:  true,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-8)
		m.ready = true
	}
	return m
}

type insightLoadedMsg struct {
	kind    string
	content string
	err     error
}

// Init loads the selected kind
func (m InsightsModel) Init() tea.Cmd {
	return m.load(service.InsightKinds[m.kind])
}

func (m InsightsModel) load(kind string) tea.Cmd {
	return func() tea.Msg {
		payload, err := service.LoadInsight(context.Background(), m.insights, kind, m.now())
		if err != nil {
			return insightLoadedMsg{kind: kind, err: err}
		}
		content, err := renderTree(payload)
		return insightLoadedMsg{kind: kind, content: content, err: err}
	}
}

// Update handles messages
func (m InsightsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case insightLoadedMsg:
		// Drop results for a kind the user already paged away from
		if msg.kind != service.InsightKinds[m.kind] {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.content = msg.content
		if m.ready {
			m.viewport.SetContent(m.content)
			m.viewport.GotoTop()
		}
		return m, nil

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 8
		}
		m.viewport.SetContent(m.content)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "right", "l":
			m.kind = (m.kind + 1) % len(service.InsightKinds)
			m.loading = true
			return m, m.Init()
		case "shift+tab", "left", "h":
			m.kind = (m.kind + len(service.InsightKinds) - 1) % len(service.InsightKinds)
			m.loading = true
			return m, m.Init()
		case "r":
			m.loading = true
			return m, m.Init()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the insights screen
func (m InsightsModel) View() string {
	tabs := m.renderTabs()

	var body string
	switch {
	case m.loading:
		body = "\n  Loading insights..."
	case m.err != nil:
		body = errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	case !m.ready:
		body = "\n  Initializing..."
	default:
		body = m.viewport.View()
	}

	footer := statusStyle.Render("  tab/←→: kind  j/k: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, tabs, body, footer)
}

func (m InsightsModel) renderTabs() string {
	var parts []string
	for i, k := range service.InsightKinds {
		if i == m.kind {
			parts = append(parts, navActiveStyle.Render(k))
		} else {
			parts = append(parts, navInactiveStyle.Render(k))
		}
	}
	return navStyle.Render(strings.Join(parts, " · "))
}

// renderTree lays out any JSON-encodable payload as an indented outline,
// keeping field order
func renderTree(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var b strings.Builder
	if err := writeNode(dec, &b, -1, ""); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeNode(dec *json.Decoder, b *strings.Builder, depth int, label string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	pad := strings.Repeat("  ", max(depth, 0))

	delim, ok := tok.(json.Delim)
	if !ok {
		b.WriteString(pad + metricLabelStyle.Render(label) + formatScalar(tok) + "\n")
		return nil
	}

	if label != "" {
		b.WriteString(pad + cardTitleStyle.UnsetMarginBottom().Render(label) + "\n")
	}
	switch delim {
	case '{':
		for dec.More() {
			key, err := dec.Token()
			if err != nil {
				return err
			}
			if err := writeNode(dec, b, depth+1, humanizeKey(fmt.Sprint(key))); err != nil {
				return err
			}
		}
	case '[':
		n := 0
		for dec.More() {
			n++
			if err := writeNode(dec, b, depth+1, fmt.Sprintf("%d.", n)); err != nil {
				return err
			}
		}
		if n == 0 {
			b.WriteString(pad + "  " + helpDescStyle.Render("none") + "\n")
		}
	}
	_, err = dec.Token()
	return err
}

func formatScalar(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return helpDescStyle.Render("--")
	case json.Number:
		return metricValueStyle.Render(v.String())
	case bool:
		if v {
			return successStyle.Render("yes")
		}
		return helpDescStyle.Render("no")
	default:
		return fmt.Sprint(v)
	}
}

// humanizeKey turns "avgSleepHours" into "Avg sleep hours"
func humanizeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
