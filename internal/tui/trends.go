package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"golang.org/x/sync/errgroup"

	"healthdash/internal/analysis"
	"healthdash/internal/service"
)

// TrendsModel charts daily steps and sleep and lists the trend windows
type TrendsModel struct {
	insights  service.Insights
	now       func() time.Time
	chartDays int
	data      *trendsData
	loading   bool
	err       error
}

type trendsData struct {
	steps        []float64
	sleepHours   []float64
	windows      []analysis.TrendWindow
	correlations []analysis.CorrelationInsight
}

// NewTrendsModel creates a new trends model
func NewTrendsModel(ins service.Insights, now func() time.Time, chartDays int) TrendsModel {
	return TrendsModel{
		insights:  ins,
		now:       now,
		chartDays: max(chartDays, 7),
		loading:   true,
	}
}

type trendsLoadedMsg struct {
	data *trendsData
	err  error
}

// Init loads the chart series and trend windows
func (m TrendsModel) Init() tea.Cmd {
	return m.loadData
}

func (m TrendsModel) loadData() tea.Msg {
	ctx := context.Background()
	now := m.now()
	data := &trendsData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		days, err := chartSeries(gctx, m.insights, now, m.chartDays)
		if err != nil {
			return err
		}
		for _, d := range days {
			data.steps = append(data.steps, float64(d.Steps))
			data.sleepHours = append(data.sleepHours, float64(d.SleepMinutes)/60)
		}
		return nil
	})
	g.Go(func() error {
		t, err := m.insights.Trends(gctx, now)
		if err != nil {
			return err
		}
		data.windows = t.Windows
		return nil
	})
	g.Go(func() (err error) {
		data.correlations, err = m.insights.Correlations(gctx, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return trendsLoadedMsg{err: err}
	}
	return trendsLoadedMsg{data: data}
}

// chartSeries returns one dashboard per day for the n days ending today,
// stitched from the calendar months the range touches
func chartSeries(ctx context.Context, ins service.Insights, now time.Time, n int) ([]analysis.DayDashboard, error) {
	today := analysis.Today(now)
	start := analysis.AddDays(today, -(n - 1))
	from, to := analysis.DayKey(start), analysis.DayKey(today)

	byDate := make(map[string]analysis.DayDashboard, n)
	for month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !month.After(today); month = month.AddDate(0, 1, 0) {
		cal, err := ins.Calendar(ctx, month, now)
		if err != nil {
			return nil, err
		}
		for _, d := range cal.Days {
			if d.Date >= from && d.Date <= to {
				byDate[d.Date] = d
			}
		}
	}

	out := make([]analysis.DayDashboard, 0, n)
	for day := start; !day.After(today); day = analysis.AddDays(day, 1) {
		out = append(out, byDate[analysis.DayKey(day)])
	}
	return out, nil
}

// Update handles messages
func (m TrendsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case trendsLoadedMsg:
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

// View renders the trends screen
func (m TrendsModel) View() string {
	if m.loading {
		return "\n  Loading trends..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.data == nil {
		return "\n  No data available. Press 's' to sync with Fitbit."
	}

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderChart(fmt.Sprintf("Steps · last %d days", m.chartDays), m.data.steps, 0),
		"  ",
		m.renderChart("Sleep hours", m.data.sleepHours, 1),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		charts,
		m.renderWindows(),
		m.renderCorrelations(),
		statusStyle.Render("Press 'r' to refresh"),
	)
}

func (m TrendsModel) renderChart(title string, series []float64, precision uint) string {
	header := cardTitleStyle.Render(title)
	if len(series) < 2 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "Not enough data"))
	}
	graph := asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Width(40),
		asciigraph.Precision(precision),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, graph))
}

func (m TrendsModel) renderWindows() string {
	title := cardTitleStyle.Render("Current vs previous window")

	rows := []string{metricLabelStyle.Render("") + fmt.Sprintf("%-16s%-16s%-16s%-16s", "Zone 2 min", "Sleep h", "Steps", "Resting HR")}
	for _, w := range m.data.windows {
		cells := []string{
			trendCell(w.Zone2Total, "%.0f"),
			trendCell(w.AvgSleepHours, "%.1f"),
			trendCell(w.AvgSteps, "%.0f"),
			trendCell(w.AvgRestingHeartRate, "%.1f"),
		}
		rows = append(rows, metricLabelStyle.Render(fmt.Sprintf("%d days", w.Days))+strings.Join(cells, ""))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

// trendCell renders the current value with its percent change, padded to a column
func trendCell(t analysis.TrendMetric, format string) string {
	value := fmt.Sprintf(format, t.Current)
	change := ""
	if t.DeltaPct != nil {
		change = fmt.Sprintf(" %+.0f%%", *t.DeltaPct)
	}
	style := trendFlatStyle
	switch {
	case t.Delta > 0:
		style = trendUpStyle
	case t.Delta < 0:
		style = trendDownStyle
	}
	return lipgloss.NewStyle().Width(16).Render(value + style.Render(change))
}

func (m TrendsModel) renderCorrelations() string {
	title := cardTitleStyle.Render("What moves together")
	if len(m.data.correlations) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
			helpDescStyle.Render("Not enough overlapping days yet.")))
	}

	var lines []string
	for _, c := range m.data.correlations {
		lines = append(lines,
			metricValueStyle.Render(c.Title)+helpDescStyle.Render(fmt.Sprintf("  r=%.2f, %s confidence, n=%d", c.R, c.Confidence, c.SampleSize)),
			helpDescStyle.Render("  "+c.Detail),
		)
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
