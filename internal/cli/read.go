package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"healthdash/internal/analysis"
	"healthdash/internal/service"
)

func newOverviewCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Today at a glance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, _, err := a.readers()
			if err != nil {
				return err
			}
			ov, err := ins.Overview(cmd.Context(), a.now())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, ov)
			}
			a.printOverview(ov)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw payload")
	return cmd
}

func (a *app) printOverview(ov *service.Overview) {
	printHeading(a.out, "Overview for "+ov.Date)
	printRow(a.out, "Steps", comma(ov.Today.Steps))
	printRow(a.out, "Active minutes", comma(ov.Today.ActiveMinutes))
	printRow(a.out, "Sleep", hours(ov.Today.SleepMinutes))
	if ov.Sleep.Latest != nil {
		printRow(a.out, "Sleep score", scoreColor(*ov.Sleep.Latest).Sprint(*ov.Sleep.Latest)+
			faint.Sprintf("  (7d avg %s)", optInt(ov.Sleep.Average7d)))
	}
	printRow(a.out, "Zone 2", fmt.Sprintf("%d min", ov.Today.Zone2Minutes))

	r := ov.Readiness.Readiness
	fmt.Fprintln(a.out)
	printRow(a.out, "Readiness", scoreColor(r.Score).Sprintf("%d %s", r.Score, r.Label))
	for _, reason := range r.Reasons {
		faint.Fprintf(a.out, "  %-18s %s\n", "", reason)
	}
	printRow(a.out, "Resting HR", optInt(ov.Readiness.Baseline.TodayRHR)+
		faint.Sprintf("  (30d %s, %s)", optFloat(ov.Readiness.Baseline.RHR30d, "bpm"), ov.Readiness.Baseline.Status))

	fmt.Fprintln(a.out)
	bold.Fprintln(a.out, "Weekly goals")
	for _, g := range ov.Goals.Progress {
		printRow(a.out, g.Label, fmt.Sprintf("%s / %s %s  %s",
			trimFloat(g.Current), trimFloat(g.Target), g.Unit, scoreColor(g.Percent).Sprintf("%d%%", g.Percent)))
	}
	for _, n := range ov.Goals.Nudges {
		faint.Fprintf(a.out, "  • %s\n", n)
	}

	if ov.Recovery.HasAnyData {
		fmt.Fprintln(a.out)
		bold.Fprintln(a.out, "Recovery "+faint.Sprint(ov.Recovery.DateLabel))
		for _, m := range ov.Recovery.Metrics() {
			if m.Value == nil {
				continue
			}
			printRow(a.out, m.Label, optFloat(m.Value, m.Unit)+" "+faint.Sprint(signed(m.Delta7d)))
		}
	}
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v), ".0")
}

func newDayCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Everything recorded for one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := analysis.Today(a.now())
			if len(args) == 1 {
				d, err := analysis.ParseDayKey(args[0])
				if err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", args[0])
				}
				day = d
			}

			ins, _, err := a.readers()
			if err != nil {
				return err
			}
			d, err := ins.Day(cmd.Context(), day)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, d)
			}

			printHeading(a.out, d.Date)
			printRow(a.out, "Steps", comma(d.Steps))
			printRow(a.out, "Active minutes", fmt.Sprintf("%d (very %d, fairly %d, light %d)",
				d.ActiveMinutes, d.VeryActiveMinutes, d.FairlyActiveMinutes, d.LightlyActiveMinutes))
			printRow(a.out, "Sedentary", hours(d.SedentaryMinutes))
			printRow(a.out, "Sleep", hours(d.SleepMinutes))
			printRow(a.out, "Sleep score", optInt(d.SleepScore))
			printRow(a.out, "Heart zones", fmt.Sprintf("zone2 %d, cardio %d, peak %d min",
				d.Zone2Minutes, d.CardioMinutes, d.PeakMinutes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw payload")
	return cmd
}

func newCalendarCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "A month of daily metrics with the weekly summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			month := analysis.Today(now)
			if len(args) == 1 {
				m, err := time.Parse(analysis.MonthKeyLayout, args[0])
				if err != nil {
					return fmt.Errorf("invalid month %q, want YYYY-MM", args[0])
				}
				month = m
			}

			ins, _, err := a.readers()
			if err != nil {
				return err
			}
			cal, err := ins.Calendar(cmd.Context(), month, now)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, cal)
			}

			printHeading(a.out, "Calendar "+cal.Month)
			faint.Fprintln(a.out, "  Sun     Mon     Tue     Wed     Thu     Fri     Sat")
			for _, week := range cal.Weeks() {
				var b strings.Builder
				b.WriteString(" ")
				for _, d := range week {
					cell := fmt.Sprintf(" %-7s", stepsCell(d))
					if !strings.HasPrefix(d.Date, cal.Month) {
						cell = faint.Sprint(cell)
					}
					b.WriteString(cell)
				}
				fmt.Fprintln(a.out, b.String())
			}

			w := cal.WeeklySummary
			fmt.Fprintln(a.out)
			bold.Fprintln(a.out, "This week")
			printRow(a.out, "Zone 2", fmt.Sprintf("%d min over %d day(s)", w.TotalZone2Minutes, w.Zone2DaysCount))
			printRow(a.out, "Avg sleep", fmt.Sprintf("%.1f h", w.AverageSleepHours))
			printRow(a.out, "Avg steps", comma(w.AverageSteps))
			printRow(a.out, "Avg active", fmt.Sprintf("%d min", w.AverageActiveMinutes))
			printRow(a.out, "Avg sedentary", fmt.Sprintf("%.1f h", w.AverageSedentaryHours))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw payload")
	return cmd
}

// stepsCell abbreviates a day's steps to fit the grid
func stepsCell(d analysis.DayDashboard) string {
	switch {
	case d.Steps == 0:
		return "·"
	case d.Steps >= 1000:
		return fmt.Sprintf("%.1fk", float64(d.Steps)/1000)
	default:
		return fmt.Sprint(d.Steps)
	}
}

func newInsightsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "insights <kind>",
		Short:     "Coaching insights as JSON",
		Long:      "Print one insights payload as JSON. Kinds: " + strings.Join(service.InsightKinds, ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: service.InsightKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, _, err := a.readers()
			if err != nil {
				return err
			}
			out, err := service.LoadInsight(cmd.Context(), ins, args[0], a.now())
			if err != nil {
				return err
			}
			return writeJSON(a.out, out)
		},
	}
}
