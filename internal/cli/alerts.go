package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"healthdash/internal/store"
)

func newAlertsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Evaluate, list and resolve health alerts",
	}
	cmd.AddCommand(
		newAlertsEvaluateCmd(a),
		newAlertsListCmd(a),
		newAlertsResolveCmd(a),
		newAlertsPrefsCmd(a),
	)
	return cmd
}

func (a *app) printAlerts(events []store.AlertEvent) {
	if len(events) == 0 {
		faint.Fprintln(a.out, "No alerts.")
		return
	}
	for _, e := range events {
		sev := severityColor(e.Severity).Sprintf("%-6s", e.Severity)
		state := ""
		if e.ResolvedAt != nil {
			state = faint.Sprint(" (resolved)")
		}
		fmt.Fprintf(a.out, "%s %s %s%s\n", sev, e.DayKey, e.Message, state)
		faint.Fprintf(a.out, "       %s %s · %s\n", e.Type, e.ID, humanize.Time(e.CreatedAt))
	}
}

func newAlertsEvaluateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Run the alert rules for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, alerter, err := a.readers()
			if err != nil {
				return err
			}
			events, err := alerter.EvaluateAlerts(cmd.Context(), a.now())
			if err != nil {
				return fmt.Errorf("evaluating alerts: %w", err)
			}
			a.printAlerts(events)
			return nil
		},
	}
}

func newAlertsListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent alerts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := a.alertService()
			if err != nil {
				return err
			}
			events, err := alerts.ListAlerts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a.printAlerts(events)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", store.DefaultAlertLimit, fmt.Sprintf("max alerts (at most %d)", store.MaxAlertLimit))
	return cmd
}

func newAlertsResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark an alert resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := a.alertService()
			if err != nil {
				return err
			}
			if err := alerts.ResolveAlert(cmd.Context(), args[0], a.now()); err != nil {
				return err
			}
			good.Fprintf(a.out, "Resolved alert %s\n", args[0])
			return nil
		},
	}
}

func newAlertsPrefsCmd(a *app) *cobra.Command {
	var p store.AlertPreference

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change alert thresholds",
		Long: `Show the alert thresholds, or change them by passing flags.

  $ healthdash alerts prefs --min-sleep-hours 7 --min-avg-steps 8000
  $ healthdash alerts prefs --enabled=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := a.alertService()
			if err != nil {
				return err
			}
			current, err := alerts.Preferences(cmd.Context())
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if anyChanged(cmd, "min-sleep-hours", "min-avg-steps", "min-zone2-days", "max-rhr-delta", "enabled") {
				next := *current
				if flags.Changed("min-sleep-hours") {
					next.MinSleepHours = p.MinSleepHours
				}
				if flags.Changed("min-avg-steps") {
					next.MinAvgSteps = p.MinAvgSteps
				}
				if flags.Changed("min-zone2-days") {
					next.MinZone2Days = p.MinZone2Days
				}
				if flags.Changed("max-rhr-delta") {
					next.MaxRestingHRDelta = p.MaxRestingHRDelta
				}
				if flags.Changed("enabled") {
					next.AlertsEnabled = p.AlertsEnabled
				}
				if err := alerts.UpdatePreferences(cmd.Context(), next); err != nil {
					return err
				}
				current = &next
				good.Fprintln(a.out, "Alert preferences updated.")
			}

			printHeading(a.out, "Alert preferences")
			printRow(a.out, "Enabled", fmt.Sprint(current.AlertsEnabled))
			printRow(a.out, "Min sleep", fmt.Sprintf("%s h", trimFloat(current.MinSleepHours)))
			printRow(a.out, "Min avg steps", comma(current.MinAvgSteps))
			printRow(a.out, "Min zone 2 days", fmt.Sprint(current.MinZone2Days))
			printRow(a.out, "Max RHR rise", fmt.Sprintf("%s bpm", trimFloat(current.MaxRestingHRDelta)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&p.MinSleepHours, "min-sleep-hours", 0, "alert when 7-day average sleep is below this")
	flags.IntVar(&p.MinAvgSteps, "min-avg-steps", 0, "alert when 7-day average steps are below this")
	flags.IntVar(&p.MinZone2Days, "min-zone2-days", 0, "alert when fewer zone 2 days this week")
	flags.Float64Var(&p.MaxRestingHRDelta, "max-rhr-delta", 0, "alert when resting HR rises more than this over baseline")
	flags.BoolVar(&p.AlertsEnabled, "enabled", true, "turn alert evaluation on or off")
	return cmd
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}
